package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jcape/datatest/internal/app"
	"github.com/stretchr/testify/require"
)

// ModulePath is the module path of every harness module.
const ModulePath = "example.com/harness"

// HarnessResult holds the outcomes of one generator run.
type HarnessResult struct {
	Dir string
	// Generated maps the slash-separated path of every generated file,
	// relative to Dir, to its content.
	Generated map[string]string
	Stdout    string
	LogOutput string
	Err       error
}

// RunGenerator writes files into a fresh module and runs the generator over
// all of its packages. The test provides relative paths (e.g.
// "conv/conv_test.go"); a go.mod is added unless files has one.
func RunGenerator(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunGeneratorWithContext(context.Background(), t, files, cfg)
}

// RunGeneratorWithContext is RunGenerator with a caller-provided context.
func RunGeneratorWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	if _, ok := files["go.mod"]; !ok {
		app.WriteTree(t, dir, map[string]string{"go.mod": "module " + ModulePath + "\n"})
	}
	app.WriteTree(t, dir, files)

	if len(cfg.Dirs) == 0 {
		cfg.Dirs = []string{dir + "/..."}
	}
	cfg.LogLevel = "debug"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	stdout := &app.SafeBuffer{}
	logs := &app.SafeBuffer{}
	runErr := app.NewApp(stdout, logs, appConfig).Run(ctx)

	if os.Getenv("DATATEST_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}

	return &HarnessResult{
		Dir:       dir,
		Generated: collectGenerated(t, dir, appConfig),
		Stdout:    stdout.String(),
		LogOutput: logs.String(),
		Err:       runErr,
	}
}

// collectGenerated reads every output file present after the run.
func collectGenerated(t *testing.T, dir string, cfg *app.Config) map[string]string {
	t.Helper()
	ext := strings.TrimSuffix(cfg.Output, "_test.go") + "_x_test.go"
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if d.Name() != cfg.Output && d.Name() != ext {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(src)
		return nil
	})
	require.NoError(t, err)
	return out
}
