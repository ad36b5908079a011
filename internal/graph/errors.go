package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is the kind of every cycle error.
var ErrCycle = errors.New("cyclic tasks")

// CycleError lists the cycles an edge insertion would have created. Each
// cycle starts and ends with the same task name.
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		parts = append(parts, strings.Join(c, " -> "))
	}
	return fmt.Sprintf("%s: [%s]", ErrCycle, strings.Join(parts, "; "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }
