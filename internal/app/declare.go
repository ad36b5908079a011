package app

import (
	"fmt"

	"github.com/specialistvlad/prune/internal/actions"
	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/session"
)

// Declare populates sess from model. The top-level default is set first,
// then every task is declared with its action in order, then per-task
// defaults are applied, so a conflicting pair fails with
// session.ErrDefaultConflict.
func Declare(sess *session.Session, model *config.Model) error {
	if model.Default != "" {
		if err := sess.SetDefault(model.Default); err != nil {
			return err
		}
	}
	for _, t := range model.Tasks {
		if _, err := sess.Task(t.Name, t.Needs, actions.Build(t, model.Vars)); err != nil {
			return fmt.Errorf("declaring task %q: %w", t.Name, err)
		}
	}
	for _, t := range model.Tasks {
		if !t.Default {
			continue
		}
		if err := sess.SetDefault(t.Name); err != nil {
			return err
		}
	}
	return nil
}
