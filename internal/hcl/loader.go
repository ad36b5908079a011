package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL taskfile loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses, decodes, translates, and validates the taskfile at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("taskfile", path)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("HCL loader started.")

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", config.ErrInvalidTaskfile, path, diags)
	}
	return l.decode(ctx, path, file.Body)
}

// LoadBytes is Load for in-memory source, used by tests and tools that
// already hold the taskfile contents.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", config.ErrInvalidTaskfile, filename, diags)
	}
	return l.decode(ctx, filename, file.Body)
}

func (l *Loader) decode(ctx context.Context, path string, body hcl.Body) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", config.ErrInvalidTaskfile, path, diags)
	}

	vars, err := translateVars(root.Vars)
	if err != nil {
		return nil, err
	}
	model := &config.Model{
		Path:    path,
		Default: root.Default,
		Vars:    vars,
	}
	for _, tb := range root.Tasks {
		t, err := l.translateTask(ctx, tb)
		if err != nil {
			return nil, err
		}
		model.Tasks = append(model.Tasks, t)
	}

	if err := config.Validate(model); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "tasks", len(model.Tasks), "vars", len(model.Vars))
	return model, nil
}

// translateVars evaluates every vars block statically and merges them.
func translateVars(blocks []*varsBlock) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value)
	for _, b := range blocks {
		attrs, diags := b.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidTaskfile, diags)
		}
		for name, attr := range attrs {
			if _, dup := vars[name]; dup {
				return nil, fmt.Errorf("%w: %s: var %q declared more than once", config.ErrInvalidTaskfile, attr.NameRange, name)
			}
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%w: var %q must be a constant: %w", config.ErrInvalidTaskfile, name, diags)
			}
			vars[name] = val
		}
	}
	return vars, nil
}
