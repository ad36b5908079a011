package graph

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/specialistvlad/prune/internal/task"
	"github.com/specialistvlad/prune/internal/taskname"
)

// node is one vertex. deps keeps insertion order; depSet makes AddDependency
// idempotent.
type node struct {
	task   *task.Task
	deps   []string
	depSet map[string]struct{}
}

// Graph is the set of all known tasks and their dependency edges.
type Graph struct {
	startDir string
	nodes    map[string]*node
}

// New creates an empty graph whose file names are relative to startDir.
func New(startDir string) (*Graph, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving start directory %q: %w", startDir, err)
	}
	return &Graph{
		startDir: abs,
		nodes:    make(map[string]*node),
	}, nil
}

// StartDir returns the absolute directory file task names are relative to.
func (g *Graph) StartDir() string { return g.startDir }

// Normalize returns the canonical form of a task name.
func (g *Graph) Normalize(name string) (string, error) {
	return taskname.Normalize(g.startDir, name)
}

// LookupOrCreate returns the task for name, creating it on first use.
func (g *Graph) LookupOrCreate(name string) (*task.Task, error) {
	key, err := g.Normalize(name)
	if err != nil {
		return nil, err
	}
	if n, ok := g.nodes[key]; ok {
		return n.task, nil
	}
	n := &node{
		task:   task.New(key),
		depSet: make(map[string]struct{}),
	}
	g.nodes[key] = n
	return n.task, nil
}

// Lookup returns the task for name without creating it.
func (g *Graph) Lookup(name string) (*task.Task, bool) {
	key, err := g.Normalize(name)
	if err != nil {
		return nil, false
	}
	n, ok := g.nodes[key]
	if !ok {
		return nil, false
	}
	return n.task, true
}

// AddDependency records that taskName needs depName. If the new edge closes
// a cycle it is removed again and a *CycleError is returned, leaving the
// graph exactly as it was before the call (apart from newly created tasks).
func (g *Graph) AddDependency(taskName, depName string) error {
	from, err := g.LookupOrCreate(taskName)
	if err != nil {
		return err
	}
	to, err := g.LookupOrCreate(depName)
	if err != nil {
		return err
	}

	n := g.nodes[from.Name()]
	if _, exists := n.depSet[to.Name()]; exists {
		return nil
	}
	n.deps = append(n.deps, to.Name())
	n.depSet[to.Name()] = struct{}{}

	if cycles := g.Cycles(); len(cycles) > 0 {
		n.deps = n.deps[:len(n.deps)-1]
		delete(n.depSet, to.Name())
		return &CycleError{Cycles: cycles}
	}
	return nil
}

// DependenciesOf returns the names taskName needs, in declaration order.
func (g *Graph) DependenciesOf(taskName string) ([]string, error) {
	key, err := g.Normalize(taskName)
	if err != nil {
		return nil, err
	}
	n, ok := g.nodes[key]
	if !ok {
		return nil, fmt.Errorf("task not found: %s", key)
	}
	out := make([]string, len(n.deps))
	copy(out, n.deps)
	return out, nil
}

// Tasks returns every known task sorted by name.
func (g *Graph) Tasks() []*task.Task {
	keys := g.sortedKeys()
	out := make([]*task.Task, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.nodes[k].task)
	}
	return out
}

// Len returns the number of known tasks.
func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) sortedKeys() []string {
	keys := make([]string, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
