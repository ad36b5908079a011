package expr

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/prune/internal/taskname"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Scope describes the task a template is rendered for.
type Scope struct {
	// Target is the task name.
	Target string
	// Sources are the task's dependencies in declaration order.
	Sources []string
	// Dir is the start directory.
	Dir string
	// Vars are exposed as var.<name>.
	Vars map[string]cty.Value
}

// roots are the top-level variable names templates may reference.
var roots = map[string]struct{}{
	"target":  {},
	"source":  {},
	"sources": {},
	"base":    {},
	"dir":     {},
	"var":     {},
}

// EvalContext builds the HCL evaluation context for s.
func (s Scope) EvalContext() *hcl.EvalContext {
	source := ""
	if len(s.Sources) > 0 {
		source = s.Sources[0]
	}
	sources := cty.ListValEmpty(cty.String)
	if len(s.Sources) > 0 {
		vals := make([]cty.Value, len(s.Sources))
		for i, src := range s.Sources {
			vals[i] = cty.StringVal(src)
		}
		sources = cty.ListVal(vals)
	}
	vars := cty.EmptyObjectVal
	if len(s.Vars) > 0 {
		vars = cty.ObjectVal(s.Vars)
	}
	base, _ := taskname.SplitExt(s.Target)

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"target":  cty.StringVal(s.Target),
			"source":  cty.StringVal(source),
			"sources": sources,
			"base":    cty.StringVal(base),
			"dir":     cty.StringVal(s.Dir),
			"var":     vars,
		},
		Functions: Functions(),
	}
}

// RenderString evaluates e in s and converts the result to a string. A nil
// expression or a null result renders as "".
func RenderString(e hcl.Expression, s Scope) (string, error) {
	if e == nil {
		return "", nil
	}
	val, diags := e.Value(s.EvalContext())
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", nil
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: template must produce a string: %w", e.Range(), err)
	}
	if !str.IsKnown() {
		return "", fmt.Errorf("%s: template produced an unknown value", e.Range())
	}
	return str.AsString(), nil
}

// ParseTemplate parses src as an HCL template, as used for string fields of
// formats other than HCL.
func ParseTemplate(src, filename string, start hcl.Pos) (hcl.Expression, hcl.Diagnostics) {
	return hclsyntax.ParseTemplate([]byte(src), filename, start)
}

// Check reports references to unknown variables, unknown var.* names, and
// unknown functions in e. vars holds the declared var names.
func Check(e hcl.Expression, vars map[string]cty.Value) hcl.Diagnostics {
	if e == nil {
		return nil
	}
	var diags hcl.Diagnostics
	for _, tr := range e.Variables() {
		root := tr.RootName()
		rng := tr.SourceRange()
		if _, ok := roots[root]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown variable",
				Detail:   fmt.Sprintf("There is no variable named %q. Available: %s.", root, availableRoots()),
				Subject:  &rng,
			})
			continue
		}
		if root != "var" || len(tr) < 2 {
			continue
		}
		attr, ok := tr[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if _, declared := vars[attr.Name]; !declared {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Undeclared var",
				Detail:   fmt.Sprintf("var.%s is not declared in the vars block.", attr.Name),
				Subject:  &rng,
			})
		}
	}

	node, ok := e.(hclsyntax.Node)
	if !ok {
		return diags
	}
	fns := Functions()
	diags = append(diags, hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
		call, ok := n.(*hclsyntax.FunctionCallExpr)
		if !ok {
			return nil
		}
		if _, known := fns[call.Name]; known {
			return nil
		}
		rng := call.NameRange
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Call to unknown function",
			Detail:   fmt.Sprintf("There is no function named %q.", call.Name),
			Subject:  &rng,
		}}
	})...)
	return diags
}

func availableRoots() string {
	names := make([]string, 0, len(roots))
	for name := range roots {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprint(names)
}
