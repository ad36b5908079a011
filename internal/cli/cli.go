package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/prune/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: 2, Message: err.Error()}
}

// options mirrors the flags before they are validated into an app.Config.
type options struct {
	file      string
	directory string
	dryRun    bool
	verbose   bool
	list      bool
	watch     bool
	noColor   bool
	vars      []string
	logLevel  string
	logFormat string
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.file, "file", "f", "", "taskfile to read (default: Prunefile.hcl, Prunefile.yaml or Prunefile.yml)")
	fs.StringVarP(&o.directory, "directory", "C", "", "start directory (default: the taskfile's directory)")
	fs.BoolVarP(&o.dryRun, "dry-run", "n", false, "print what would run without running it")
	fs.BoolVarP(&o.dryRun, "just-print", "d", false, "alias for --dry-run")
	_ = fs.MarkHidden("just-print")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log progress at info level")
	fs.BoolVarP(&o.list, "list", "l", false, "list declared tasks and exit")
	fs.BoolVarP(&o.watch, "watch", "w", false, "re-run when files change")
	fs.BoolVar(&o.noColor, "no-color", false, "disable styling of --list output")
	fs.StringArrayVar(&o.vars, "var", nil, "template variable override as name=value (repeatable)")
	fs.StringVar(&o.logLevel, "log-level", "info", "logging level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "text", "log output format: text or json")
}

// parseVars splits name=value pairs.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", pair)
		}
		vars[name] = value
	}
	return vars, nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly (help or
// version was printed), or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	var (
		o      options
		config *app.Config
	)

	cmd := &cobra.Command{
		Use:   "prune [flags] [task...]",
		Short: "Bring tasks and files up to date",
		Long: `prune runs the tasks declared in a taskfile, rebuilding file targets only
when they are older than their dependencies.

Task names starting with ':' are virtual, names starting with '.' are
implicit rules for files with that extension, and anything else is a file
relative to the start directory.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, positional []string) error {
			vars, err := parseVars(o.vars)
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			cfg, err := app.NewConfig(app.Config{
				Taskfile:  o.file,
				Directory: o.directory,
				Tasks:     positional,
				Vars:      vars,
				DryRun:    o.dryRun,
				Verbose:   o.verbose,
				List:      o.list,
				Watch:     o.watch,
				NoColor:   o.noColor,
				LogFormat: strings.ToLower(o.logFormat),
				LogLevel:  strings.ToLower(o.logLevel),
			})
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			config = cfg
			return nil
		},
	}
	bindFlags(cmd.Flags(), &o)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})
	if args == nil {
		// cobra falls back to os.Args when given nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	if err := cmd.Execute(); err != nil {
		return nil, false, usageError(err)
	}
	if config == nil {
		// --help or --version was handled by cobra.
		return nil, true, nil
	}
	return config, false, nil
}
