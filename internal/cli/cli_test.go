package cli

import (
	"bytes"
	"testing"

	"github.com/jcape/datatest/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	// Arrange
	var out bytes.Buffer

	// Act
	cfg, shouldExit, err := Parse(nil, &out)

	// Assert
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, []string{"."}, cfg.Dirs)
	assert.Equal(t, app.DefaultOutput, cfg.Output)
	assert.Equal(t, "datatest.hcl", cfg.HCLFile)
	assert.Equal(t, "registerDatatests", cfg.Register)
	assert.True(t, cfg.Entry)
	assert.False(t, cfg.Check)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Positive(t, cfg.Workers)
}

func TestParse_Flags(t *testing.T) {
	args := []string{
		"-output", "zz_gen_test.go", "-hcl", "tests.hcl", "-register", "addTests",
		"-entry=false", "-check", "-keep-going", "-workers", "3",
		"-log-level", "DEBUG", "-log-format", "json",
		"./a", "./b/...",
	}

	cfg, shouldExit, err := Parse(args, &bytes.Buffer{})

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, &app.Config{
		Dirs:      []string{"./a", "./b/..."},
		Output:    "zz_gen_test.go",
		HCLFile:   "tests.hcl",
		Register:  "addTests",
		Entry:     false,
		Check:     true,
		KeepGoing: true,
		Workers:   3,
		LogFormat: "json",
		LogLevel:  "debug",
	}, cfg)
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer

	cfg, shouldExit, err := Parse([]string{"-h"}, &out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "-keep-going")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"-nope"}, want: "flag provided but not defined: -nope"},
		{name: "log format", args: []string{"-log-format", "xml"}, want: "invalid log-format"},
		{name: "log level", args: []string{"-log-level", "loud"}, want: "invalid log-level"},
		{name: "workers", args: []string{"-workers", "-1"}, want: "invalid workers"},
		{name: "output", args: []string{"-output", "gen.go"}, want: "must end in _test.go"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tc.args, &bytes.Buffer{})

			assert.Nil(t, cfg)
			assert.False(t, shouldExit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
