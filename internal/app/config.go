package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Taskfile is the taskfile path. Empty means discover it.
	Taskfile string
	// Directory is the start directory. Empty means the taskfile's directory.
	Directory string
	// Tasks are the requested task names.
	Tasks []string
	// Vars override taskfile vars.
	Vars map[string]string

	DryRun  bool
	Verbose bool
	List    bool
	Watch   bool
	NoColor bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.List && cfg.Watch {
		return nil, errors.New("--list and --watch cannot be combined")
	}
	return &cfg, nil
}
