package engine

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/freshness"
	"github.com/specialistvlad/prune/internal/graph"
	"github.com/specialistvlad/prune/internal/rules"
	"github.com/specialistvlad/prune/internal/task"
	"github.com/specialistvlad/prune/internal/taskname"
)

// Options controls how the engine runs actions and reports progress.
type Options struct {
	// DryRun reports the actions that would run without invoking them.
	DryRun bool
	// Verbose logs progress at info instead of debug level.
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// Engine walks a graph and brings requested tasks up to date.
type Engine struct {
	graph *graph.Graph
	opts  Options
}

// New creates an engine over g.
func New(g *graph.Graph, opts Options) *Engine {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Engine{graph: g, opts: opts}
}

// frame is one pending task on the explicit traversal stack.
type frame struct {
	task   *task.Task
	deps   []string
	next   int
	newest freshness.Value
}

// Execute brings name up to date and returns its freshness.
func (e *Engine) Execute(ctx context.Context, name string) (freshness.Value, error) {
	root, err := e.graph.LookupOrCreate(name)
	if err != nil {
		return freshness.Stale, err
	}

	value, top, err := e.enter(ctx, root)
	if err != nil || top == nil {
		return value, err
	}

	stack := []*frame{top}
	for {
		cur := stack[len(stack)-1]

		if cur.next < len(cur.deps) {
			dep, err := e.graph.LookupOrCreate(cur.deps[cur.next])
			if err != nil {
				return freshness.Stale, err
			}
			cur.next++

			if dep.State() == task.InProgress {
				return freshness.Stale, stackCycle(stack, dep)
			}
			value, child, err := e.enter(ctx, dep)
			if err != nil {
				return freshness.Stale, err
			}
			if child == nil {
				cur.newest = freshness.Max(cur.newest, value)
				continue
			}
			stack = append(stack, child)
			continue
		}

		value, err := e.finish(ctx, cur)
		if err != nil {
			return freshness.Stale, err
		}
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return value, nil
		}
		parent := stack[len(stack)-1]
		parent.newest = freshness.Max(parent.newest, value)
	}
}

// enter applies the checks that happen before a task's dependencies are
// walked. It either settles the task immediately, returning its freshness
// and a nil frame, or marks it in progress and returns a frame to walk.
func (e *Engine) enter(ctx context.Context, t *task.Task) (freshness.Value, *frame, error) {
	if err := ctx.Err(); err != nil {
		return freshness.Stale, nil, err
	}
	if t.Kind() == taskname.Template {
		return freshness.Stale, nil, taskErr(t.Name(), ErrTemplateNotRunnable, nil)
	}

	if t.Kind() == taskname.File && !t.HasAction() {
		if _, err := rules.Resolve(e.graph, t); err != nil {
			return freshness.Stale, nil, err
		}
	}

	if !t.HasAction() {
		if t.Kind() == taskname.File {
			value, ok, err := freshness.ModTime(e.graph.StartDir(), t.Name())
			if err != nil {
				return freshness.Stale, nil, err
			}
			if ok {
				return value, nil, nil
			}
		}
		return freshness.Stale, nil, taskErr(t.Name(), ErrNoRunner, nil)
	}

	if t.HasRun() {
		value, err := e.revisit(t)
		return value, nil, err
	}

	t.Start()
	deps, err := e.graph.DependenciesOf(t.Name())
	if err != nil {
		return freshness.Stale, nil, err
	}
	return freshness.Stale, &frame{task: t, deps: deps, newest: freshness.Stale}, nil
}

// revisit answers for a task that already ran in this invocation.
func (e *Engine) revisit(t *task.Task) (freshness.Value, error) {
	if t.Kind() == taskname.Virtual {
		return freshness.Fresh, nil
	}
	value, ok, err := freshness.ModTime(e.graph.StartDir(), t.Name())
	if err != nil {
		return freshness.Stale, err
	}
	if ok {
		return value, nil
	}
	if t.Simulated() {
		return freshness.Fresh, nil
	}
	return freshness.Stale, taskErr(t.Name(), ErrMissingTarget, nil)
}

// finish decides staleness once every dependency has been walked and runs
// the action when needed.
func (e *Engine) finish(ctx context.Context, f *frame) (freshness.Value, error) {
	t := f.task
	logger := ctxlog.FromContext(ctx).With("task", t.Name())

	if t.Kind() == taskname.File {
		current, ok, err := freshness.ModTime(e.graph.StartDir(), t.Name())
		if err != nil {
			return freshness.Stale, err
		}
		if ok && current >= f.newest {
			logger.Debug("up to date", "mtime", current, "newest_dependency", f.newest)
			t.Finish()
			return current, nil
		}
	}

	logger.Log(ctx, e.progressLevel(), "running")

	if e.opts.DryRun {
		t.MarkSimulated()
		t.Finish()
		return freshness.Fresh, nil
	}

	if err := ctx.Err(); err != nil {
		return freshness.Stale, err
	}
	signal, err := t.Action()(ctx, &task.Invocation{
		Task:    t,
		Sources: f.deps,
		Dir:     e.graph.StartDir(),
		Stdout:  e.opts.Stdout,
		Stderr:  e.opts.Stderr,
	})
	if err != nil {
		return freshness.Stale, taskErr(t.Name(), ErrActionFailed, err)
	}
	t.Finish()

	if t.Kind() == taskname.Virtual {
		if signal == task.NotUpdated {
			logger.Debug("action reported not updated")
			return freshness.Stale, nil
		}
		return freshness.Fresh, nil
	}

	value, ok, err := freshness.ModTime(e.graph.StartDir(), t.Name())
	if err != nil {
		return freshness.Stale, err
	}
	if !ok {
		return freshness.Stale, taskErr(t.Name(), ErrMissingTarget, nil)
	}
	return value, nil
}

func (e *Engine) progressLevel() slog.Level {
	if e.opts.Verbose || e.opts.DryRun {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// stackCycle builds the cycle error for a dependency found in progress.
func stackCycle(stack []*frame, dep *task.Task) error {
	var path []string
	for i, f := range stack {
		if f.task == dep {
			for _, g := range stack[i:] {
				path = append(path, g.task.Name())
			}
			break
		}
	}
	path = append(path, dep.Name())
	return taskErr(dep.Name(), graph.ErrCycle, &graph.CycleError{Cycles: [][]string{path}})
}
