// Package freshness defines the value the engine compares to decide whether
// a task is stale, and reads it from the filesystem.
package freshness

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Value orders task outputs by age. File tasks use their modification time in
// nanoseconds; virtual tasks use one of the two sentinels.
type Value int64

const (
	// Stale compares lower than any real modification time.
	Stale Value = 0
	// Fresh compares higher than any real modification time.
	Fresh Value = math.MaxInt64
)

// FromTime converts a modification time. Times at or before the Unix epoch
// are clamped to 1 so they still beat Stale.
func FromTime(t time.Time) Value {
	n := t.UnixNano()
	if n <= 0 {
		return 1
	}
	if n == math.MaxInt64 {
		return Fresh - 1
	}
	return Value(n)
}

// Max returns the larger of a and b.
func Max(a, b Value) Value {
	if a > b {
		return a
	}
	return b
}

func (v Value) String() string {
	switch v {
	case Stale:
		return "stale"
	case Fresh:
		return "fresh"
	default:
		return time.Unix(0, int64(v)).UTC().Format(time.RFC3339Nano)
	}
}

// ModTime reads the freshness of dir/name. The boolean is false when the
// file does not exist; any other stat failure is returned as an error.
func ModTime(dir, name string) (Value, bool, error) {
	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stale, false, nil
		}
		return Stale, false, fmt.Errorf("stat %s: %w", name, err)
	}
	return FromTime(info.ModTime()), true, nil
}
