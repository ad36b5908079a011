// Package hcl loads Prunefile.hcl taskfiles into the format-agnostic config
// model. It is responsible for parsing, decoding with gohcl, and static
// evaluation of the non-template attributes.
package hcl
