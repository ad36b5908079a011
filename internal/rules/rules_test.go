package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/prune/internal/graph"
	"github.com/specialistvlad/prune/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *task.Invocation) (task.Signal, error) { return task.Updated, nil }

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(t.TempDir())
	require.NoError(t, err)
	return g
}

// declare binds an action to name and records its dependencies.
func declare(t *testing.T, g *graph.Graph, name string, needs ...string) *task.Task {
	t.Helper()
	tk, err := g.LookupOrCreate(name)
	require.NoError(t, err)
	require.NoError(t, tk.Bind(noop))
	for _, n := range needs {
		require.NoError(t, g.AddDependency(name, n))
	}
	return tk
}

func TestResolve_SuffixSubstitution(t *testing.T) {
	g := newGraph(t)
	declare(t, g, ".o", ".c", "config.h")

	foo, err := g.LookupOrCreate("foo.o")
	require.NoError(t, err)

	// --- Act ---
	found, err := Resolve(g, foo)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, foo.HasAction())

	deps, err := g.DependenciesOf("foo.o")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo.c", "config.h"}, deps)
}

func TestResolve_NestedPath(t *testing.T) {
	g := newGraph(t)
	declare(t, g, ".o", ".c")

	obj, err := g.LookupOrCreate("src/lib/foo.o")
	require.NoError(t, err)

	_, err = Resolve(g, obj)
	require.NoError(t, err)

	deps, err := g.DependenciesOf("src/lib/foo.o")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib/foo.c"}, deps)
}

func TestResolve_NoTemplate(t *testing.T) {
	g := newGraph(t)
	src, err := g.LookupOrCreate("foo.c")
	require.NoError(t, err)

	found, err := Resolve(g, src)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, src.HasAction())

	_, created := g.Lookup(".c")
	assert.False(t, created, "resolution must not create template tasks")
}

func TestResolve_LeavesBoundTasksAlone(t *testing.T) {
	g := newGraph(t)
	declare(t, g, ".o", ".c")
	own := declare(t, g, "special.o", "special.s")

	found, err := Resolve(g, own)
	require.NoError(t, err)
	assert.False(t, found)

	deps, err := g.DependenciesOf("special.o")
	require.NoError(t, err)
	assert.Equal(t, []string{"special.s"}, deps)
}

func TestResolve_IgnoresNonFileTasks(t *testing.T) {
	g := newGraph(t)
	declare(t, g, ".o", ".c")

	v, err := g.LookupOrCreate(":x.o")
	require.NoError(t, err)
	found, err := Resolve(g, v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolve_CycleThroughRule(t *testing.T) {
	g := newGraph(t)
	declare(t, g, ".o", ".c")
	declare(t, g, "loop.c", "loop.o")

	obj, err := g.LookupOrCreate("loop.o")
	require.NoError(t, err)

	_, err = Resolve(g, obj)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCycle))
}
