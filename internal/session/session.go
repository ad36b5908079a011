// Package session is the declaration surface and run driver. A Session owns
// one task graph: callers declare tasks and a default into it, then ask it to
// run. Independent sessions share nothing, so one process can build and run
// any number of graphs.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/engine"
	"github.com/specialistvlad/prune/internal/freshness"
	"github.com/specialistvlad/prune/internal/graph"
	"github.com/specialistvlad/prune/internal/task"
)

var (
	ErrNothingToDo     = errors.New("nothing to do")
	ErrDefaultConflict = errors.New("conflicting default task")
	ErrReentrantRun    = errors.New("run called while a run is in progress")
)

// Options configures a Session.
type Options struct {
	// StartDir is the directory file task names are relative to.
	StartDir string
	// Requested are the task names the process was asked for, typically the
	// command line's positional arguments. Run falls back to them when it is
	// called without names.
	Requested []string
	DryRun    bool
	Verbose   bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// Session holds the graph, the default task and the run state.
type Session struct {
	opts        Options
	graph       *graph.Graph
	engine      *engine.Engine
	defaultTask string
	running     bool
	ran         bool
}

// New creates an empty session.
func New(opts Options) (*Session, error) {
	g, err := graph.New(opts.StartDir)
	if err != nil {
		return nil, err
	}
	return &Session{
		opts:  opts,
		graph: g,
		engine: engine.New(g, engine.Options{
			DryRun:  opts.DryRun,
			Verbose: opts.Verbose,
			Stdout:  opts.Stdout,
			Stderr:  opts.Stderr,
		}),
	}, nil
}

// Graph exposes the session's task graph.
func (s *Session) Graph() *graph.Graph { return s.graph }

// Task declares name with its dependencies and binds action to it. Binding
// a second action to the same task fails with task.ErrDuplicateRunner.
// Dependencies are recorded in order; a dependency that closes a cycle fails
// with graph.ErrCycle.
func (s *Session) Task(name string, needs []string, action task.Action) (*task.Task, error) {
	t, err := s.graph.LookupOrCreate(name)
	if err != nil {
		return nil, err
	}
	if err := t.Bind(action); err != nil {
		return nil, err
	}
	if err := s.Needs(t.Name(), needs...); err != nil {
		return nil, err
	}
	return t, nil
}

// Needs adds dependencies to name without binding an action.
func (s *Session) Needs(name string, deps ...string) error {
	for _, dep := range deps {
		if err := s.graph.AddDependency(name, dep); err != nil {
			return err
		}
	}
	return nil
}

// SetDefault marks name as the task to run when nothing else is requested.
// Declaring the same default twice is harmless; a different one is an error.
func (s *Session) SetDefault(name string) error {
	t, err := s.graph.LookupOrCreate(name)
	if err != nil {
		return err
	}
	if s.defaultTask != "" && s.defaultTask != t.Name() {
		return fmt.Errorf("%w: %s conflicts with %s", ErrDefaultConflict, t.Name(), s.defaultTask)
	}
	s.defaultTask = t.Name()
	return nil
}

// Default returns the default task name, or "".
func (s *Session) Default() string { return s.defaultTask }

// Resolve picks the task list for a run: explicit names, else the requested
// names, else the default.
func (s *Session) Resolve(names ...string) ([]string, error) {
	switch {
	case len(names) > 0:
		return names, nil
	case len(s.opts.Requested) > 0:
		return s.opts.Requested, nil
	case s.defaultTask != "":
		return []string{s.defaultTask}, nil
	default:
		return nil, ErrNothingToDo
	}
}

// Run brings the resolved tasks up to date, left to right. Each task's
// whole dependency tree completes before the next task starts. Calling Run
// from inside an action fails with ErrReentrantRun.
func (s *Session) Run(ctx context.Context, names ...string) error {
	if s.running {
		return ErrReentrantRun
	}
	s.running = true
	s.ran = true
	defer func() { s.running = false }()

	tasks, err := s.Resolve(names...)
	if err != nil {
		return err
	}

	if s.opts.DryRun {
		ctx = ctxlog.With(ctx, "dry_run", true)
	}
	logger := ctxlog.FromContext(ctx)
	level := s.progressLevel()
	if s.defaultTask != "" {
		logger.Log(ctx, level, "default task", "task", s.defaultTask)
	}
	logger.Log(ctx, level, "running tasks", "tasks", tasks)

	for _, name := range tasks {
		value, err := s.engine.Execute(ctx, name)
		if err != nil {
			return err
		}
		logger.Debug("task complete", "task", name, "freshness", value)
	}
	return nil
}

func (s *Session) progressLevel() slog.Level {
	if s.opts.Verbose || s.opts.DryRun {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// Finish runs the session with no explicit names if Run was never called.
// It is the explicit replacement for running pending work at process exit.
func (s *Session) Finish(ctx context.Context) error {
	if s.ran {
		return nil
	}
	return s.Run(ctx)
}

// Freshness runs name and returns its freshness. It is mostly useful to
// callers composing sessions programmatically.
func (s *Session) Freshness(ctx context.Context, name string) (freshness.Value, error) {
	if s.running {
		return freshness.Stale, ErrReentrantRun
	}
	s.running = true
	s.ran = true
	defer func() { s.running = false }()
	return s.engine.Execute(ctx, name)
}
