package config

import (
	"context"
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// ErrInvalidTaskfile wraps every load or validation failure.
var ErrInvalidTaskfile = errors.New("invalid taskfile")

// Loader is the interface for a format-specific taskfile loader.
type Loader interface {
	// Load reads the taskfile at path and translates it into the model.
	Load(ctx context.Context, path string) (*Model, error)
}

// Model is one loaded taskfile.
type Model struct {
	// Path is the file the model was loaded from.
	Path string
	// Default is the top-level default task, or "".
	Default string
	// Vars are the values templates see as var.<name>.
	Vars map[string]cty.Value
	// Tasks are in declaration order.
	Tasks []*Task
}

// Task is one declared task.
type Task struct {
	Name        string
	Needs       []string
	Description string
	// Default marks this task as the default, like the top-level attribute.
	Default bool
	// Command is a shell command template, or nil.
	Command hcl.Expression
	// Message is printed before the command runs, or nil.
	Message hcl.Expression
	// Env holds extra environment variables for Command.
	Env map[string]hcl.Expression
	// Touch creates the target or refreshes its modification time.
	Touch bool
	// Updated, when set to false, makes a virtual task report that it did
	// not update anything.
	Updated *bool
	// DeclRange locates the declaration for error messages.
	DeclRange hcl.Range
}

// SetVar overrides or adds a template variable.
func (m *Model) SetVar(name, value string) {
	if m.Vars == nil {
		m.Vars = make(map[string]cty.Value)
	}
	m.Vars[name] = cty.StringVal(value)
}

// Expressions returns every template expression of the task.
func (t *Task) Expressions() []hcl.Expression {
	var out []hcl.Expression
	if t.Command != nil {
		out = append(out, t.Command)
	}
	if t.Message != nil {
		out = append(out, t.Message)
	}
	for _, e := range t.Env {
		out = append(out, e)
	}
	return out
}
