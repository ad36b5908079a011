// Package graph holds every task known to a session together with the
// directed "needs" relation between them.
//
// # Responsibilities
//
//   - Lookup-or-create of tasks by name. File names are normalized relative
//     to the start directory, so the same file reached through different
//     spellings is one task.
//   - Edge insertion. The graph must stay acyclic: every insertion is
//     followed by a whole-graph cycle check and an insertion that closes a
//     cycle is rolled back and reported as a *CycleError.
//   - Dependency queries in declaration order, which makes execution order
//     deterministic.
//
// # Thread-Safety
//
// A Graph is owned by a single session and driven by a single goroutine.
// It performs no locking.
package graph
