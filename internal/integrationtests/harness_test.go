package integrationtests

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/session"
	"github.com/specialistvlad/prune/internal/task"
	"github.com/specialistvlad/prune/internal/taskname"
	"github.com/specialistvlad/prune/internal/testutil"
	"github.com/stretchr/testify/require"
)

// journal records the order in which actions ran.
type journal struct {
	mu  sync.Mutex
	ran []string
}

func (j *journal) names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.ran...)
}

// record returns an action that notes its task and, for file tasks, writes
// the target with the current time.
func (j *journal) record() task.Action {
	return func(_ context.Context, inv *task.Invocation) (task.Signal, error) {
		j.mu.Lock()
		j.ran = append(j.ran, inv.Task.Name())
		j.mu.Unlock()
		if inv.Task.Kind() == taskname.File {
			path := filepath.Join(inv.Dir, inv.Task.Name())
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return task.Updated, err
			}
			if err := os.WriteFile(path, []byte(inv.Task.Name()), 0o644); err != nil {
				return task.Updated, err
			}
		}
		return task.Updated, nil
	}
}

type build struct {
	dir  string
	sess *session.Session
	logs *testutil.SafeBuffer
	ctx  context.Context
	j    *journal
}

func newBuild(t *testing.T, files map[string]string, opts session.Options) *build {
	t.Helper()
	return newBuildIn(t, testutil.WriteFiles(t, files), opts)
}

// newBuildIn starts a fresh session over an existing directory.
func newBuildIn(t *testing.T, dir string, opts session.Options) *build {
	t.Helper()
	logs := &testutil.SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { testutil.DumpLogs(t, logs) })

	opts.StartDir = dir
	opts.Stdout = &bytes.Buffer{}
	opts.Stderr = &bytes.Buffer{}
	sess, err := session.New(opts)
	require.NoError(t, err)

	return &build{
		dir:  dir,
		sess: sess,
		logs: logs,
		ctx:  ctxlog.WithLogger(context.Background(), logger),
		j:    &journal{},
	}
}

func (b *build) age(t *testing.T, name string, offset time.Duration) {
	t.Helper()
	testutil.SetAge(t, b.dir, name, offset)
}
