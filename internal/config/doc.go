// Package config is the format-agnostic model of a taskfile. The HCL and
// YAML loaders both translate into it, and the application turns it into
// session declarations.
package config
