package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/prune/internal/expr"
	"github.com/specialistvlad/prune/internal/taskname"
)

// Validate checks the model for mistakes that can be reported before any
// task runs. All problems are collected into one error wrapping
// ErrInvalidTaskfile.
func Validate(m *Model) error {
	var diags hcl.Diagnostics
	for _, t := range m.Tasks {
		rng := t.DeclRange
		if t.Name == "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Empty task name",
				Subject:  &rng,
			})
			continue
		}
		kind := taskname.KindOf(t.Name)
		if t.Touch && kind == taskname.Virtual {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid touch",
				Detail:   fmt.Sprintf("Task %q is virtual and has no file to touch.", t.Name),
				Subject:  &rng,
			})
		}
		if t.Updated != nil && kind != taskname.Virtual {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid updated",
				Detail:   fmt.Sprintf("Only virtual tasks report updates; %q is a %s task.", t.Name, kind),
				Subject:  &rng,
			})
		}
		for _, e := range t.Expressions() {
			diags = append(diags, expr.Check(e, m.Vars)...)
		}
	}
	if diags.HasErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidTaskfile, diags.Error())
	}
	return nil
}
