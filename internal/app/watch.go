package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/fsutil"
	"github.com/specialistvlad/prune/internal/watch"
)

// watch re-runs the request whenever something under startDir changes,
// until ctx is canceled. Each run reloads the taskfile into a new session.
// Failed runs are logged and watching continues.
func (a *App) watch(ctx context.Context, taskfile, startDir string) error {
	logger := ctxlog.FromContext(ctx)

	dirs, err := a.watchDirs(taskfile, startDir)
	if err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	w, err := watch.New(dirs, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(err error) {
			logger.Warn("Watcher error.", "error", err)
		})
	}()
	defer func() { <-done }()

	logger.Info("Watching for changes.", "dirs", len(dirs))
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch stopped.")
			return nil
		case <-trigger:
			w.Pause()
			a.rerun(ctx, taskfile, startDir)
			if dirs, err := a.watchDirs(taskfile, startDir); err == nil {
				if err := w.Add(dirs...); err != nil {
					logger.Warn("Could not watch new directories.", "error", err)
				}
			}
			w.Resume()
			// A trigger queued while the run was starting belongs to it.
			select {
			case <-trigger:
			default:
			}
		}
	}
}

// rerun reloads the taskfile and runs it once, logging any failure.
func (a *App) rerun(ctx context.Context, taskfile, startDir string) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Change detected, re-running.")

	model, err := a.load(ctx, taskfile)
	if err != nil {
		logger.Error("Run failed.", "error", a.loadErr(taskfile, err))
		return
	}
	if err := a.runOnce(ctx, model, startDir); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Error("Run failed.", "error", err)
		return
	}
	logger.Info("Run finished.")
}

// watchDirs lists the start directory tree and the taskfile's directory.
func (a *App) watchDirs(taskfile, startDir string) ([]string, error) {
	dirs, err := fsutil.FindDirs(startDir)
	if err != nil {
		return nil, err
	}
	tfDir := filepath.Dir(taskfile)
	if rel, err := filepath.Rel(startDir, tfDir); err != nil || strings.HasPrefix(rel, "..") {
		dirs = append(dirs, tfDir)
	}
	return dirs, nil
}
