// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TaskfileNames are the taskfile names Discover looks for, in order.
var TaskfileNames = []string{"Prunefile.hcl", "Prunefile.yaml", "Prunefile.yml"}

// ErrNoTaskfile is returned by Discover when dir holds no taskfile.
var ErrNoTaskfile = errors.New("no taskfile found")

// Discover returns the path of the first taskfile found in dir.
func Discover(dir string) (string, error) {
	for _, name := range TaskfileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoTaskfile, dir, strings.Join(TaskfileNames, ", "))
}

// FindDirs recursively collects rootPath and every directory below it,
// skipping hidden directories.
func FindDirs(rootPath string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootPath && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}
