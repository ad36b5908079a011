package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/output"
	"github.com/specialistvlad/prune/internal/session"
)

// Run executes the main application logic based on the App's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	taskfile, startDir, err := a.locate()
	if err != nil {
		return err
	}
	a.logger.Debug("Taskfile located.", "taskfile", taskfile, "start_dir", startDir)
	if a.config.Verbose {
		a.logger.Info("Running from start directory.", "start_dir", startDir)
	}

	model, err := a.load(ctx, taskfile)
	if err != nil {
		return a.loadErr(taskfile, err)
	}

	if a.config.List {
		return a.list(model, startDir)
	}

	if err := a.runOnce(ctx, model, startDir); err != nil {
		if !a.config.Watch {
			return err
		}
		a.logger.Error("Run failed.", "error", err)
	}

	if a.config.Watch {
		return a.watch(ctx, taskfile, startDir)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// newSession builds a fresh session for one run of model.
func (a *App) newSession(model *config.Model, startDir string) (*session.Session, error) {
	sess, err := session.New(session.Options{
		StartDir:  startDir,
		Requested: a.config.Tasks,
		DryRun:    a.config.DryRun,
		Verbose:   a.config.Verbose,
		Stdout:    a.outW,
		Stderr:    a.errW,
	})
	if err != nil {
		return nil, err
	}
	if err := Declare(sess, model); err != nil {
		return nil, err
	}
	return sess, nil
}

// runOnce declares model into a new session and finishes it.
func (a *App) runOnce(ctx context.Context, model *config.Model, startDir string) error {
	sess, err := a.newSession(model, startDir)
	if err != nil {
		return err
	}
	return sess.Finish(ctx)
}

// list prints the declared tasks and the resolved default.
func (a *App) list(model *config.Model, startDir string) error {
	if a.config.NoColor {
		output.DisableColor()
	}
	sess, err := a.newSession(model, startDir)
	if err != nil {
		return fmt.Errorf("declaring tasks: %w", err)
	}
	def := sess.Default()
	if def != "" {
		// Match the spelling used in the taskfile for display.
		for _, t := range model.Tasks {
			if n, err := sess.Graph().Normalize(t.Name); err == nil && n == def {
				def = t.Name
				break
			}
		}
	}
	output.TaskList(a.outW, model, def)
	return nil
}
