package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/freshness"
	"github.com/specialistvlad/prune/internal/graph"
	"github.com/specialistvlad/prune/internal/task"
	"github.com/specialistvlad/prune/internal/taskname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// recorder remembers which actions ran, in order.
type recorder struct {
	calls []string
}

// produce returns an action that records the call and, for file tasks,
// writes the target with the given modification time.
func (r *recorder) produce(stamp time.Time) task.Action {
	return func(ctx context.Context, inv *task.Invocation) (task.Signal, error) {
		r.calls = append(r.calls, inv.Task.Name())
		if inv.Task.Kind() == taskname.File {
			path := filepath.Join(inv.Dir, inv.Task.Name())
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return task.Updated, err
			}
			if err := os.WriteFile(path, []byte(inv.Task.Name()), 0o644); err != nil {
				return task.Updated, err
			}
			if err := os.Chtimes(path, stamp, stamp); err != nil {
				return task.Updated, err
			}
		}
		return task.Updated, nil
	}
}

// signal returns an action that records the call and reports s.
func (r *recorder) signal(s task.Signal) task.Action {
	return func(ctx context.Context, inv *task.Invocation) (task.Signal, error) {
		r.calls = append(r.calls, inv.Task.Name())
		return s, nil
	}
}

type fixture struct {
	graph  *graph.Graph
	dir    string
	rec    *recorder
	logBuf *bytes.Buffer
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	g, err := graph.New(dir)
	require.NoError(t, err)

	logBuf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &fixture{
		graph:  g,
		dir:    g.StartDir(),
		rec:    &recorder{},
		logBuf: logBuf,
		ctx:    ctxlog.WithLogger(context.Background(), logger),
	}
}

func (f *fixture) engine(opts Options) *Engine {
	opts.Stdout = &bytes.Buffer{}
	opts.Stderr = &bytes.Buffer{}
	return New(f.graph, opts)
}

func (f *fixture) declare(t *testing.T, name string, action task.Action, needs ...string) {
	t.Helper()
	tk, err := f.graph.LookupOrCreate(name)
	require.NoError(t, err)
	require.NoError(t, tk.Bind(action))
	for _, n := range needs {
		require.NoError(t, f.graph.AddDependency(name, n))
	}
}

func (f *fixture) writeFile(t *testing.T, name string, stamp time.Time) {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	require.NoError(t, os.Chtimes(path, stamp, stamp))
}

func (f *fixture) exists(name string) bool {
	_, err := os.Stat(filepath.Join(f.dir, name))
	return err == nil
}

// buildWithRule declares ":build" -> "a.o" and the ".o" <- ".c" rule.
func (f *fixture) buildWithRule(t *testing.T) {
	t.Helper()
	f.declare(t, ":build", f.rec.signal(task.Updated), "a.o")
	f.declare(t, ".o", f.rec.produce(t0.Add(2*time.Hour)), ".c")
}

func TestScenarioA_MissingObjectIsBuilt(t *testing.T) {
	f := newFixture(t)
	f.buildWithRule(t)
	f.writeFile(t, "a.c", t0.Add(time.Hour))

	// --- Act ---
	value, err := f.engine(Options{}).Execute(f.ctx, ":build")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, freshness.Fresh, value)
	assert.Equal(t, []string{"a.o", ":build"}, f.rec.calls)
	assert.True(t, f.exists("a.o"))

	deps, err := f.graph.DependenciesOf("a.o")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.c"}, deps)
}

func TestScenarioA_OlderObjectIsRebuilt(t *testing.T) {
	f := newFixture(t)
	f.buildWithRule(t)
	f.writeFile(t, "a.c", t0.Add(time.Hour))
	f.writeFile(t, "a.o", t0)

	_, err := f.engine(Options{}).Execute(f.ctx, ":build")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.o", ":build"}, f.rec.calls)
}

func TestScenarioB_NewerObjectIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.buildWithRule(t)
	f.writeFile(t, "a.c", t0)
	f.writeFile(t, "a.o", t0.Add(time.Hour))

	_, err := f.engine(Options{}).Execute(f.ctx, ":build")
	require.NoError(t, err)
	assert.Equal(t, []string{":build"}, f.rec.calls, "virtual build still runs, a.o does not")
}

func TestStaleness_TieIsUpToDate(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "out", f.rec.produce(t0.Add(time.Hour)), "in")
	f.writeFile(t, "in", t0)
	f.writeFile(t, "out", t0)

	value, err := f.engine(Options{}).Execute(f.ctx, "out")
	require.NoError(t, err)
	assert.Empty(t, f.rec.calls)
	assert.Equal(t, freshness.FromTime(t0), value)
}

func TestStaleness_AnyNewerDependencyRebuilds(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "out", f.rec.produce(t0.Add(3*time.Hour)), "old", "new")
	f.writeFile(t, "old", t0)
	f.writeFile(t, "new", t0.Add(2*time.Hour))
	f.writeFile(t, "out", t0.Add(time.Hour))

	value, err := f.engine(Options{}).Execute(f.ctx, "out")
	require.NoError(t, err)
	assert.Equal(t, []string{"out"}, f.rec.calls)
	assert.Equal(t, freshness.FromTime(t0.Add(3*time.Hour)), value)
}

func TestMemoization_RunsOncePerInvocation(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":x", f.rec.signal(task.Updated))
	f.declare(t, "file", f.rec.produce(t0))
	e := f.engine(Options{})

	first, err := e.Execute(f.ctx, ":x")
	require.NoError(t, err)
	second, err := e.Execute(f.ctx, ":x")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	fileFirst, err := e.Execute(f.ctx, "file")
	require.NoError(t, err)
	fileSecond, err := e.Execute(f.ctx, "file")
	require.NoError(t, err)
	assert.Equal(t, fileFirst, fileSecond)

	assert.Equal(t, []string{":x", "file"}, f.rec.calls)
}

func TestMemoization_DiamondRunsSharedDependencyOnce(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":top", f.rec.signal(task.Updated), ":left", ":right")
	f.declare(t, ":left", f.rec.signal(task.Updated), ":base")
	f.declare(t, ":right", f.rec.signal(task.Updated), ":base")
	f.declare(t, ":base", f.rec.signal(task.Updated))

	_, err := f.engine(Options{}).Execute(f.ctx, ":top")
	require.NoError(t, err)
	assert.Equal(t, []string{":base", ":left", ":right", ":top"}, f.rec.calls)
}

func TestDryRun_NoActionsAndFreshPropagates(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "app", f.rec.produce(t0.Add(3*time.Hour)), "a.o", "b.o")
	f.declare(t, ".o", f.rec.produce(t0.Add(2*time.Hour)), ".c")
	f.writeFile(t, "a.c", t0.Add(time.Hour))
	f.writeFile(t, "b.c", t0)
	f.writeFile(t, "b.o", t0.Add(time.Hour))
	f.writeFile(t, "app", t0.Add(90*time.Minute))

	// --- Act ---
	value, err := f.engine(Options{DryRun: true}).Execute(f.ctx, "app")

	// --- Assert ---
	require.NoError(t, err)
	assert.Empty(t, f.rec.calls, "dry run must not invoke actions")
	assert.Equal(t, freshness.Fresh, value)
	assert.False(t, f.exists("a.o"))

	logs := f.logBuf.String()
	assert.Contains(t, logs, "msg=running task=a.o")
	assert.Contains(t, logs, "msg=running task=app")
	assert.NotContains(t, logs, "msg=running task=b.o")
}

func TestDryRun_RevisitOfSimulatedFileIsFresh(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "gen", f.rec.produce(t0))
	e := f.engine(Options{DryRun: true})

	_, err := e.Execute(f.ctx, "gen")
	require.NoError(t, err)
	value, err := e.Execute(f.ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, freshness.Fresh, value)
}

func TestVirtual_NotUpdatedIsStale(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":check", f.rec.signal(task.NotUpdated))
	f.declare(t, "report", f.rec.produce(t0.Add(time.Hour)), ":check")
	f.writeFile(t, "report", t0)

	value, err := f.engine(Options{}).Execute(f.ctx, "report")
	require.NoError(t, err)
	assert.Equal(t, []string{":check"}, f.rec.calls, "report is newer than a stale virtual dependency")
	assert.Equal(t, freshness.FromTime(t0), value)
}

func TestVirtual_UpdatedIsFresh(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":gen", f.rec.signal(task.Updated))
	f.declare(t, "report", f.rec.produce(t0.Add(time.Hour)), ":gen")
	f.writeFile(t, "report", t0)

	_, err := f.engine(Options{}).Execute(f.ctx, "report")
	require.NoError(t, err)
	assert.Equal(t, []string{":gen", "report"}, f.rec.calls)
}

func TestVirtual_RevisitIsFreshEvenAfterNotUpdated(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":check", f.rec.signal(task.NotUpdated))
	e := f.engine(Options{})

	first, err := e.Execute(f.ctx, ":check")
	require.NoError(t, err)
	second, err := e.Execute(f.ctx, ":check")
	require.NoError(t, err)

	assert.Equal(t, freshness.Stale, first)
	assert.Equal(t, freshness.Fresh, second)
	assert.Equal(t, []string{":check"}, f.rec.calls)
}

func TestTemplate_NotRunnable(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ".o", f.rec.produce(t0), ".c")

	_, err := f.engine(Options{}).Execute(f.ctx, ".o")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplateNotRunnable))

	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, ".o", taskErr.Task)
}

func TestNoRunner(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine(Options{}).Execute(f.ctx, "nowhere.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRunner))

	_, err = f.engine(Options{}).Execute(f.ctx, ":phony")
	assert.True(t, errors.Is(err, ErrNoRunner))
}

func TestNoRunner_ExistingFileIsLeaf(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "input.txt", t0)

	value, err := f.engine(Options{}).Execute(f.ctx, "input.txt")
	require.NoError(t, err)
	assert.Equal(t, freshness.FromTime(t0), value)
}

func TestMissingTarget(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "promised.txt", f.rec.signal(task.Updated))

	_, err := f.engine(Options{}).Execute(f.ctx, "promised.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTarget))
	assert.Contains(t, err.Error(), "promised.txt")
}

func TestMissingTarget_NeverCheckedInDryRun(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "promised.txt", f.rec.signal(task.Updated))

	_, err := f.engine(Options{DryRun: true}).Execute(f.ctx, "promised.txt")
	require.NoError(t, err)
}

func TestActionError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.declare(t, ":fail", func(context.Context, *task.Invocation) (task.Signal, error) {
		return task.Updated, boom
	})

	_, err := f.engine(Options{}).Execute(f.ctx, ":fail")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrActionFailed))
	assert.True(t, errors.Is(err, boom))
}

func TestInvocation_SourcesAndDir(t *testing.T) {
	f := newFixture(t)
	var got *task.Invocation
	f.declare(t, ":see", func(_ context.Context, inv *task.Invocation) (task.Signal, error) {
		got = inv
		return task.Updated, nil
	}, "one.txt", "two.txt")
	f.writeFile(t, "one.txt", t0)
	f.writeFile(t, "two.txt", t0)

	_, err := f.engine(Options{}).Execute(f.ctx, ":see")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"one.txt", "two.txt"}, got.Sources)
	assert.Equal(t, f.dir, got.Dir)
}

func TestCancelledContext(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":x", f.rec.signal(task.Updated))
	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	_, err := f.engine(Options{}).Execute(ctx, ":x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, f.rec.calls)
}

func TestVerbose_LogsRunningAtInfo(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":x", f.rec.signal(task.Updated))

	_, err := f.engine(Options{Verbose: true}).Execute(f.ctx, ":x")
	require.NoError(t, err)
	assert.Contains(t, f.logBuf.String(), "level=INFO msg=running task=:x")
}

func TestQuiet_LogsRunningAtDebug(t *testing.T) {
	f := newFixture(t)
	f.declare(t, ":x", f.rec.signal(task.Updated))

	_, err := f.engine(Options{}).Execute(f.ctx, ":x")
	require.NoError(t, err)
	assert.Contains(t, f.logBuf.String(), "level=DEBUG msg=running task=:x")
}
