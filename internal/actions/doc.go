// Package actions turns declared taskfile tasks into task.Action values.
// An action prints its message, runs its shell command, touches its target,
// and finally reports the declared update signal, in that order.
package actions
