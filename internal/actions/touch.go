package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// touch creates name under dir if needed and sets its times to now.
func touch(dir, name string) error {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("touch %s: %w", name, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("touch %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("touch %s: %w", name, err)
	}
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("touch %s: %w", name, err)
	}
	return nil
}
