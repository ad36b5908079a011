// Package rules applies template tasks ("implicit rules") to concrete file
// tasks. A template named ".o" that needs ".c" tells the engine how to build
// any "<base>.o" from "<base>.c" without a per-file declaration.
package rules

import (
	"fmt"

	"github.com/specialistvlad/prune/internal/graph"
	"github.com/specialistvlad/prune/internal/task"
	"github.com/specialistvlad/prune/internal/taskname"
)

// Resolve binds the template matching t's suffix onto t. It reports whether a
// template was found. Tasks that are not file tasks, that already have an
// action, or whose name has no extension are left alone.
func Resolve(g *graph.Graph, t *task.Task) (bool, error) {
	if t.Kind() != taskname.File || t.HasAction() {
		return false, nil
	}
	_, ext := taskname.SplitExt(t.Name())
	if ext == "" {
		return false, nil
	}
	tmpl, ok := g.Lookup(ext)
	if !ok {
		return false, nil
	}

	t.Inherit(tmpl)

	sources, err := g.DependenciesOf(tmpl.Name())
	if err != nil {
		return false, err
	}
	for _, src := range sources {
		dep := src
		if taskname.KindOf(src) == taskname.Template {
			dep = taskname.Substitute(t.Name(), src)
		}
		if err := g.AddDependency(t.Name(), dep); err != nil {
			return false, fmt.Errorf("applying rule %s to %s: %w", tmpl.Name(), t.Name(), err)
		}
	}
	return true, nil
}
