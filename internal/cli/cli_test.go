package cli_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/prune/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := cli.Parse(nil, &out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Empty(t, cfg.Taskfile)
	assert.Empty(t, cfg.Tasks)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestParse_Flags(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := cli.Parse([]string{
		"-f", "build.hcl", "-C", "src", "-n", "-v",
		"--var", "cc=clang", "--var", "flags=-O2 -g",
		"--log-level", "DEBUG", "--log-format", "json",
		"app", ":test",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "build.hcl", cfg.Taskfile)
	assert.Equal(t, "src", cfg.Directory)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, map[string]string{"cc": "clang", "flags": "-O2 -g"}, cfg.Vars)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"app", ":test"}, cfg.Tasks)
}

func TestParse_LegacyDryRunShorthand(t *testing.T) {
	cfg, _, err := cli.Parse([]string{"-d", "all"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}

func TestParse_HelpAndVersion(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"--version"}} {
		var out bytes.Buffer
		cfg, shouldExit, err := cli.Parse(args, &out)

		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.NotEmpty(t, out.String())
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"bad log format", []string{"--log-format", "xml"}},
		{"malformed var", []string{"--var", "novalue"}},
		{"list with watch", []string{"-l", "-w"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := cli.Parse(tc.args, &bytes.Buffer{})

			var exitErr *cli.ExitError
			require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
