package taskname

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrOutsideStartDir = errors.New("is outside the start directory")

// Normalize returns the canonical name for raw. Virtual and template names
// are returned verbatim. File names are rewritten as a clean path relative to
// startDir, which must be absolute. Paths outside startDir are rejected with
// ErrOutsideStartDir.
func Normalize(startDir, raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("task name cannot be empty")
	}
	if KindOf(raw) != File {
		return raw, nil
	}

	p := raw
	if !filepath.IsAbs(p) {
		p = filepath.Join(startDir, p)
	}
	rel, err := filepath.Rel(startDir, p)
	if err != nil {
		return "", fmt.Errorf("task name %q: %w", raw, err)
	}
	if rel == "." {
		return "", fmt.Errorf("task name %q refers to the start directory itself", raw)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("task name %q %w", raw, ErrOutsideStartDir)
	}
	if KindOf(rel) != File {
		// "sub/../.x" collapses into something that reads as a template.
		return "", fmt.Errorf("task name %q normalizes to %q, which is not a file name", raw, rel)
	}
	return rel, nil
}

// SplitExt splits a file name into its base and extension. The extension
// starts at the last '.' of the final path element and includes the dot.
// Leading dots of the final element are part of the base, so "dir/.env" has
// no extension.
func SplitExt(name string) (base, ext string) {
	elemStart := strings.LastIndexAny(name, `/\`) + 1
	elem := name[elemStart:]
	trimmed := strings.TrimLeft(elem, ".")
	dot := strings.LastIndexByte(trimmed, '.')
	if dot < 0 {
		return name, ""
	}
	cut := len(name) - len(trimmed) + dot
	return name[:cut], name[cut:]
}

// Substitute applies a suffix-relative dependency of a template to a
// concrete file task: Substitute("src/foo.o", ".c") is "src/foo.c".
func Substitute(concrete, suffix string) string {
	base, _ := SplitExt(concrete)
	return base + suffix
}
