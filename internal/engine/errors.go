package engine

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateNotRunnable = errors.New("template tasks are not runnable")
	ErrNoRunner            = errors.New("no task runner")
	ErrMissingTarget       = errors.New("failed to create target file")
	ErrActionFailed        = errors.New("task action failed")
)

// TaskError reports why a task could not be brought up to date.
type TaskError struct {
	Task string
	Kind error
	Err  error
}

func (e *TaskError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Task, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Task, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func taskErr(name string, kind error, cause error) error {
	return &TaskError{Task: name, Kind: kind, Err: cause}
}
