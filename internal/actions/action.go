package actions

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/expr"
	"github.com/specialistvlad/prune/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// Build returns the action for decl. vars are the taskfile's template
// variables. A declaration with nothing to do yields an action that only
// reports its signal.
func Build(decl *config.Task, vars map[string]cty.Value) task.Action {
	return func(ctx context.Context, inv *task.Invocation) (task.Signal, error) {
		scope := expr.Scope{
			Target:  inv.Task.Name(),
			Sources: inv.Sources,
			Dir:     inv.Dir,
			Vars:    vars,
		}
		logger := ctxlog.FromContext(ctx)

		if decl.Message != nil {
			msg, err := expr.RenderString(decl.Message, scope)
			if err != nil {
				return task.Updated, fmt.Errorf("rendering message: %w", err)
			}
			if err := printMessage(inv.Stdout, msg); err != nil {
				return task.Updated, err
			}
		}

		if decl.Command != nil {
			line, err := expr.RenderString(decl.Command, scope)
			if err != nil {
				return task.Updated, fmt.Errorf("rendering command: %w", err)
			}
			env, err := renderEnv(decl, scope)
			if err != nil {
				return task.Updated, err
			}
			logger.Debug("exec", "cmd", line)
			if err := runShell(ctx, inv, line, env); err != nil {
				return task.Updated, err
			}
		}

		if decl.Touch {
			if err := touch(inv.Dir, inv.Task.Name()); err != nil {
				return task.Updated, err
			}
		}

		if decl.Updated != nil && !*decl.Updated {
			return task.NotUpdated, nil
		}
		return task.Updated, nil
	}
}

// renderEnv renders the declared environment as sorted KEY=value pairs.
func renderEnv(decl *config.Task, scope expr.Scope) ([]string, error) {
	if len(decl.Env) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(decl.Env))
	for name := range decl.Env {
		names = append(names, name)
	}
	sort.Strings(names)

	env := make([]string, 0, len(names))
	for _, name := range names {
		val, err := expr.RenderString(decl.Env[name], scope)
		if err != nil {
			return nil, fmt.Errorf("rendering env %s: %w", name, err)
		}
		env = append(env, name+"="+val)
	}
	return env, nil
}
