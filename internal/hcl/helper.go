package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/prune/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. gohcl fills omitted optional expression fields with a synthetic
// expression whose range has no width, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	isDefined := rng.End.Byte > rng.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", rng.String(),
		"is_defined", isDefined,
	)
	return isDefined
}
