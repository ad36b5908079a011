package expr

import (
	"path/filepath"
	"sort"

	"github.com/specialistvlad/prune/internal/taskname"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions returns the function table available to templates.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"upper":     stdlib.UpperFunc,
		"lower":     stdlib.LowerFunc,
		"join":      stdlib.JoinFunc,
		"split":     stdlib.SplitFunc,
		"replace":   stdlib.ReplaceFunc,
		"format":    stdlib.FormatFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"concat":    stdlib.ConcatFunc,
		"length":    stdlib.LengthFunc,
		"basename":  pathFunc(filepath.Base),
		"dirname":   pathFunc(filepath.Dir),
		"ext": pathFunc(func(p string) string {
			_, ext := taskname.SplitExt(p)
			return ext
		}),
	}
}

// FunctionNames returns the sorted names of Functions.
func FunctionNames() []string {
	fns := Functions()
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pathFunc wraps a string-to-string path helper as a cty function.
func pathFunc(fn func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(fn(args[0].AsString())), nil
		},
	})
}
