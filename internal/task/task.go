// Package task defines the task entity: a named node of the dependency graph
// with an optional action and a per-invocation visitation state.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/prune/internal/taskname"
)

// ErrDuplicateRunner is returned when an action is bound to a task that
// already has one.
var ErrDuplicateRunner = errors.New("duplicate task runner")

// Signal is what an action reports back. The zero value means the action
// updated its output; only virtual tasks care about NotUpdated.
type Signal int

const (
	Updated Signal = iota
	NotUpdated
)

// Invocation carries everything an action needs to do its work.
type Invocation struct {
	// Task is the concrete task being run. For implicit rules this is the
	// file task, not the template the action came from.
	Task *Task
	// Sources are the task's dependency names in declaration order.
	Sources []string
	// Dir is the start directory. File task names are relative to it.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Action performs a task's work.
type Action func(ctx context.Context, inv *Invocation) (Signal, error)

// State is the task's visitation state within one invocation.
type State int

const (
	Unvisited State = iota
	InProgress
	Done
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case InProgress:
		return "in-progress"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Task is a single vertex of the dependency graph. Tasks are created by the
// graph on first lookup and live for the rest of the session.
type Task struct {
	name   string
	kind   taskname.Kind
	action Action
	state  State
	// simulated is set when a dry run pretended to run the task.
	simulated bool
}

// New creates a task for an already-normalized name.
func New(name string) *Task {
	return &Task{name: name, kind: taskname.KindOf(name)}
}

// Name returns the normalized task name.
func (t *Task) Name() string { return t.name }

// Kind returns the task's kind.
func (t *Task) Kind() taskname.Kind { return t.kind }

// Action returns the bound action, or nil.
func (t *Task) Action() Action { return t.action }

// HasAction reports whether an action is bound.
func (t *Task) HasAction() bool { return t.action != nil }

// Bind attaches an action. A task accepts exactly one binding.
func (t *Task) Bind(a Action) error {
	if a == nil {
		return fmt.Errorf("task %s: nil action", t.name)
	}
	if t.action != nil {
		return fmt.Errorf("%w for %s", ErrDuplicateRunner, t.name)
	}
	t.action = a
	return nil
}

// Inherit copies a template's action onto an action-less task. It is a
// no-op when the task already has an action.
func (t *Task) Inherit(template *Task) {
	if t.action == nil {
		t.action = template.action
	}
}

// State returns the visitation state.
func (t *Task) State() State { return t.state }

// HasRun reports whether the task was visited in this invocation.
func (t *Task) HasRun() bool { return t.state != Unvisited }

// Start marks the task as being visited.
func (t *Task) Start() { t.state = InProgress }

// Finish marks the task as completely visited.
func (t *Task) Finish() { t.state = Done }

// MarkSimulated records that a dry run stood in for the real action.
func (t *Task) MarkSimulated() { t.simulated = true }

// Simulated reports whether a dry run stood in for the real action.
func (t *Task) Simulated() bool { return t.simulated }

func (t *Task) String() string {
	return fmt.Sprintf("<Task %s>", t.name)
}
