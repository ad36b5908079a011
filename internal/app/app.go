package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/specialistvlad/prune/internal/config"
	"github.com/specialistvlad/prune/internal/ctxlog"
	"github.com/specialistvlad/prune/internal/fsutil"
	prunehcl "github.com/specialistvlad/prune/internal/hcl"
	"github.com/specialistvlad/prune/internal/yamlfile"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Actions write to outW;
// logs go to errW through the App's own isolated logger.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		config: cfg,
	}
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// locate resolves the taskfile path and the start directory.
func (a *App) locate() (taskfile, startDir string, err error) {
	taskfile = a.config.Taskfile
	if taskfile == "" {
		searchDir := a.config.Directory
		if searchDir == "" {
			if searchDir, err = os.Getwd(); err != nil {
				return "", "", err
			}
		}
		if taskfile, err = fsutil.Discover(searchDir); err != nil {
			return "", "", err
		}
	}
	if taskfile, err = filepath.Abs(taskfile); err != nil {
		return "", "", err
	}

	startDir = a.config.Directory
	if startDir == "" {
		startDir = filepath.Dir(taskfile)
	}
	if startDir, err = filepath.Abs(startDir); err != nil {
		return "", "", err
	}
	return taskfile, startDir, nil
}

// loaderFor picks the loader by file extension. Anything that is not YAML
// is read as HCL.
func loaderFor(path string) config.Loader {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yamlfile.NewLoader()
	default:
		return prunehcl.NewLoader()
	}
}

// load reads the taskfile and applies the --var overrides.
func (a *App) load(ctx context.Context, path string) (*config.Model, error) {
	model, err := loaderFor(path).Load(ctx, path)
	if err != nil {
		return nil, err
	}
	for name, value := range a.config.Vars {
		model.SetVar(name, value)
	}
	if len(a.config.Vars) > 0 {
		// Overrides may introduce names the templates use.
		if err := config.Validate(model); err != nil {
			return nil, err
		}
	}
	ctxlog.FromContext(ctx).Debug("Taskfile loaded.", "path", path, "tasks", len(model.Tasks))
	return model, nil
}

func (a *App) loadErr(path string, err error) error {
	return fmt.Errorf("failed to load taskfile %s: %w", path, err)
}
