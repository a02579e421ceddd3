package integrationtests

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jcape/datatest/internal/app"
	"github.com/stretchr/testify/require"
)

// Test for: the checked-in generated files of the example packages match
// what the generator produces today.
func TestExamples_GeneratedFilesAreCurrent(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := filepath.Join("..", "..", "examples")
	runner, out, logs := app.SetupAppTest(t, app.Config{Dirs: []string{dir + "/..."}, Check: true})

	// --- Act ---
	err := runner.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err, "regenerate with go generate ./examples/...\n%s", logs.String())
	require.Empty(t, out.String())
	require.Contains(t, logs.String(), "Generated file is up to date.")
}
