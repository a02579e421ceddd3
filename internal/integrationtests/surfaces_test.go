package integrationtests

import (
	"testing"

	"github.com/jcape/datatest/internal/app"
	"github.com/jcape/datatest/internal/testutil"
	"github.com/stretchr/testify/require"
)

const directiveSource = `package conv

import "testing"

//datatest:files "testdata", { input in "(.*)\\.in", output = "${1}.out" }
func checkConvert(input string, output []byte) error { return nil }

//datatest:files "testdata", { input in "(.*)\\.in" }
//datatest:bench
func benchConvert(b *testing.B, input string) {}

//datatest:cases "cases.yaml"
//datatest:ignore
func checkCases(c string) {}
`

const plainSource = `package conv

import "testing"

func checkConvert(input string, output []byte) error { return nil }

func benchConvert(b *testing.B, input string) {}

func checkCases(c string) {}
`

const declarationFile = `
files "checkConvert" {
  root = "testdata"
  arg "input" {
    pattern = "(.*)\\.in"
  }
  arg "output" {
    template = "$${1}.out"
  }
}

files "benchConvert" {
  root  = "testdata"
  bench = true
  arg "input" {
    pattern = "(.*)\\.in"
  }
}

cases "checkCases" {
  yaml   = "cases.yaml"
  ignore = true
}
`

// Test for: both annotation surfaces generate the same code.
func TestSurfaces_DirectivesAndHCLAgree(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	directives := map[string]string{"conv/conv_test.go": directiveSource}
	declarations := map[string]string{
		"conv/conv_test.go": plainSource,
		"conv/datatest.hcl": declarationFile,
	}

	// --- Act ---
	fromDirectives := testutil.RunGenerator(t, directives, app.Config{Entry: true})
	fromHCL := testutil.RunGenerator(t, declarations, app.Config{Entry: true})

	// --- Assert ---
	require.NoError(t, fromDirectives.Err, fromDirectives.LogOutput)
	require.NoError(t, fromHCL.Err, fromHCL.LogOutput)
	want := testutil.RequireGenerated(t, fromDirectives, "conv/"+app.DefaultOutput)
	got := testutil.RequireGenerated(t, fromHCL, "conv/"+app.DefaultOutput)
	require.Equal(t, want, got)
}

// Test for: one function declared on both surfaces is rejected.
func TestSurfaces_DoubleDeclaration(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"conv/conv_test.go": directiveSource,
		"conv/datatest.hcl": `cases "checkCases" { yaml = "other.yaml" }`,
	}

	// --- Act ---
	result := testutil.RunGenerator(t, files, app.Config{})

	// --- Assert ---
	var diagErr *app.DiagnosticsError
	require.ErrorAs(t, result.Err, &diagErr)
	require.Contains(t, result.LogOutput, "Duplicate test declaration")
	require.Contains(t, result.LogOutput, "checkCases")
	require.Empty(t, result.Generated)
}
