package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top level of a taskfile.
type fileRoot struct {
	Default string       `hcl:"default,optional"`
	Vars    []*varsBlock `hcl:"vars,block"`
	Tasks   []*taskBlock `hcl:"task,block"`
}

// varsBlock holds arbitrary static attributes exposed as var.<name>.
type varsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// taskBlock is one `task "<name>" { ... }` block. Template attributes are
// kept as expressions and evaluated per run.
type taskBlock struct {
	Name        string         `hcl:"name,label"`
	Needs       []string       `hcl:"needs,optional"`
	Description string         `hcl:"description,optional"`
	Default     bool           `hcl:"default,optional"`
	Command     hcl.Expression `hcl:"command,optional"`
	Message     hcl.Expression `hcl:"message,optional"`
	Env         hcl.Expression `hcl:"env,optional"`
	Touch       bool           `hcl:"touch,optional"`
	Updated     hcl.Expression `hcl:"updated,optional"`
	DeclRange   hcl.Range      `hcl:",def_range"`
}
