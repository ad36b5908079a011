package taskname

// Kind distinguishes the three flavours of task.
type Kind int

const (
	// File tasks are backed by a path; their freshness is the file's mtime.
	File Kind = iota
	// Virtual tasks (":name") have no file; freshness is a logical signal.
	Virtual
	// Template tasks (".ext") are rules applied to file tasks by suffix.
	Template
)

const (
	virtualPrefix  = ':'
	templatePrefix = '.'
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Virtual:
		return "virtual"
	case Template:
		return "template"
	default:
		return "unknown"
	}
}

// KindOf reports the kind encoded in a raw task name. The empty name is a
// file name; callers reject it through Normalize.
func KindOf(name string) Kind {
	if name == "" {
		return File
	}
	switch name[0] {
	case virtualPrefix:
		return Virtual
	case templatePrefix:
		return Template
	default:
		return File
	}
}
