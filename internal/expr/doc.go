// Package expr is the template language shared by every taskfile format.
// Templates are HCL template expressions evaluated against go-cty values
// describing the task being built.
package expr
