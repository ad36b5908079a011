package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateTask converts a decoded task block into the agnostic model.
func (l *Loader) translateTask(ctx context.Context, tb *taskBlock) (*config.Task, error) {
	logger := ctxlog.FromContext(ctx).With("task", tb.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL task to internal config model.")

	t := &config.Task{
		Name:        tb.Name,
		Needs:       tb.Needs,
		Description: tb.Description,
		Default:     tb.Default,
		Touch:       tb.Touch,
		DeclRange:   tb.DeclRange,
	}
	if isExprDefined(ctx, tb.Command, "command") {
		t.Command = tb.Command
	}
	if isExprDefined(ctx, tb.Message, "message") {
		t.Message = tb.Message
	}
	if isExprDefined(ctx, tb.Env, "env") {
		env, err := translateEnv(tb.Env)
		if err != nil {
			return nil, fmt.Errorf("in task %q: %w", tb.Name, err)
		}
		t.Env = env
	}
	if isExprDefined(ctx, tb.Updated, "updated") {
		var updated bool
		if diags := gohcl.DecodeExpression(tb.Updated, nil, &updated); diags.HasErrors() {
			return nil, fmt.Errorf("%w: in task %q, updated must be a constant bool: %w", config.ErrInvalidTaskfile, tb.Name, diags)
		}
		t.Updated = &updated
	}
	return t, nil
}

// translateEnv splits an object constructor into per-variable templates so
// each value can be rendered against the task at run time.
func translateEnv(e hcl.Expression) (map[string]hcl.Expression, error) {
	pairs, diags := hcl.ExprMap(e)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: env must be an object: %w", config.ErrInvalidTaskfile, diags)
	}
	env := make(map[string]hcl.Expression, len(pairs))
	for _, pair := range pairs {
		name, err := envKey(pair.Key)
		if err != nil {
			return nil, err
		}
		env[name] = pair.Value
	}
	return env, nil
}

func envKey(key hcl.Expression) (string, error) {
	if kw := hcl.ExprAsKeyword(key); kw != "" {
		return kw, nil
	}
	val, diags := key.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("%w: env keys must be constant: %w", config.ErrInvalidTaskfile, diags)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil || str.IsNull() {
		return "", fmt.Errorf("%w: %s: env keys must be strings", config.ErrInvalidTaskfile, key.Range())
	}
	return str.AsString(), nil
}
