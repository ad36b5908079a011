package actions

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/specialistvlad/prune/internal/task"
)

// Shell is the interpreter commands are passed to with -c.
var Shell = "/bin/sh"

// runShell runs line through Shell in the start directory. env is appended
// to the process environment.
func runShell(ctx context.Context, inv *task.Invocation, line string, env []string) error {
	cmd := exec.CommandContext(ctx, Shell, "-c", line) //nolint: gosec
	cmd.Dir = inv.Dir
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q: %w", line, err)
	}
	return nil
}
