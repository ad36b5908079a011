// Package engine executes tasks. For a requested task it walks the
// transitive dependencies bottom-up, decides per task whether the output is
// stale, and runs (or, in a dry run, pretends to run) the task's action.
//
// # Freshness
//
// Every visited task yields a freshness.Value. File tasks yield their
// modification time; virtual tasks yield freshness.Fresh when they ran (or
// ran earlier in this invocation) and freshness.Stale when their action
// reported task.NotUpdated. A task is stale when it is a virtual task, when
// its file is missing, or when any dependency is strictly newer than it.
//
// # Memoization
//
// Each task runs at most once per session. The walk is an explicit-stack
// post-order traversal driven by the task's visitation state
// (Unvisited, InProgress, Done). Revisiting a finished virtual task yields
// Fresh; revisiting a finished file task re-reads its mtime. Meeting a task
// that is still InProgress means the graph has a cycle, which edge insertion
// normally prevents.
//
// # Errors
//
// Every failure is fatal for the run and is returned as a *TaskError whose
// Kind is one of the package's sentinel errors.
package engine
