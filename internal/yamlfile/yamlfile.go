// Package yamlfile loads Prunefile.yaml taskfiles into the config model.
// String fields are parsed as HCL templates, so both formats share one
// expression language and validator.
package yamlfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/expr"
	"github.com/zclconf/go-cty/cty"
	"go.yaml.in/yaml/v3"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML taskfile loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

type document struct {
	Default string              `yaml:"default"`
	Vars    map[string]varValue `yaml:"vars"`
	Tasks   []taskDoc           `yaml:"tasks"`
}

type taskDoc struct {
	Name        string              `yaml:"name"`
	Needs       stringList          `yaml:"needs"`
	Description string              `yaml:"description"`
	Default     bool                `yaml:"default"`
	Command     *template           `yaml:"command"`
	Message     *template           `yaml:"message"`
	Env         map[string]template `yaml:"env"`
	Touch       bool                `yaml:"touch"`
	Updated     *bool               `yaml:"updated"`
}

// layout is decoded leniently next to document to recover task positions.
type layout struct {
	Tasks []yaml.Node `yaml:"tasks"`
}

// stringList accepts either a single string or a sequence of strings.
type stringList []string

// UnmarshalYAML allows `needs: foo.c` as shorthand for `needs: [foo.c]`.
func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Tag == "!!null" {
			*s = nil
			return nil
		}
		*s = stringList{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// template is a raw template string with its position in the file.
type template struct {
	src          string
	line, column int
}

// UnmarshalYAML keeps the scalar text and its position.
func (t *template) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a string template", value.Line)
	}
	t.src, t.line, t.column = value.Value, value.Line, value.Column
	return nil
}

// varValue is a string or a list of strings.
type varValue struct {
	val cty.Value
}

// UnmarshalYAML converts scalars and sequences of scalars to cty values.
func (v *varValue) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		v.val = cty.StringVal(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		if len(list) == 0 {
			v.val = cty.ListValEmpty(cty.String)
			return nil
		}
		vals := make([]cty.Value, len(list))
		for i, s := range list {
			vals[i] = cty.StringVal(s)
		}
		v.val = cty.ListVal(vals)
		return nil
	default:
		return fmt.Errorf("line %d: vars must be strings or lists of strings", value.Line)
	}
}

// Load reads, decodes, translates, and validates the taskfile at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidTaskfile, err)
	}
	return l.LoadBytes(ctx, src, path)
}

// LoadBytes is Load for in-memory source.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("taskfile", filename)
	logger.Debug("YAML loader started.")

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", config.ErrInvalidTaskfile, filename, err)
	}

	var lay layout
	_ = yaml.Unmarshal(src, &lay)

	model := &config.Model{
		Path:    filename,
		Default: doc.Default,
		Vars:    make(map[string]cty.Value, len(doc.Vars)),
	}
	for name, v := range doc.Vars {
		model.Vars[name] = v.val
	}
	for i, td := range doc.Tasks {
		var pos hcl.Pos
		if i < len(lay.Tasks) {
			pos = hcl.Pos{Line: lay.Tasks[i].Line, Column: lay.Tasks[i].Column}
		}
		t, err := translateTask(filename, pos, td)
		if err != nil {
			return nil, err
		}
		model.Tasks = append(model.Tasks, t)
	}

	if err := config.Validate(model); err != nil {
		return nil, err
	}
	logger.Debug("YAML loading complete.", "tasks", len(model.Tasks), "vars", len(model.Vars))
	return model, nil
}

func translateTask(filename string, pos hcl.Pos, td taskDoc) (*config.Task, error) {
	t := &config.Task{
		Name:        td.Name,
		Needs:       td.Needs,
		Description: td.Description,
		Default:     td.Default,
		Touch:       td.Touch,
		Updated:     td.Updated,
		DeclRange:   hcl.Range{Filename: filename, Start: pos, End: pos},
	}

	var err error
	if t.Command, err = parse(filename, td.Command); err != nil {
		return nil, err
	}
	if t.Message, err = parse(filename, td.Message); err != nil {
		return nil, err
	}
	if len(td.Env) > 0 {
		t.Env = make(map[string]hcl.Expression, len(td.Env))
		for name, tmpl := range td.Env {
			if t.Env[name], err = parse(filename, &tmpl); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func parse(filename string, t *template) (hcl.Expression, error) {
	if t == nil {
		return nil, nil
	}
	e, diags := expr.ParseTemplate(t.src, filename, hcl.Pos{Line: t.line, Column: t.column})
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidTaskfile, diags)
	}
	return e, nil
}
