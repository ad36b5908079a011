// Package taskname parses the names tasks are declared with.
//
// A task name carries its kind in its first character: a leading ':' marks a
// virtual task, a leading '.' marks a template task keyed by a file suffix,
// and anything else is a file path. Parsing happens once, at the boundary,
// and the result is an explicit Kind that the rest of the engine switches on.
//
// File names are normalized relative to the start directory so that
// "./a.o", "a.o" and "/abs/start/a.o" all name the same task.
package taskname
