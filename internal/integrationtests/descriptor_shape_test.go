package integrationtests

import (
	"testing"

	"github.com/jcape/datatest/internal/app"
	"github.com/jcape/datatest/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Test for: descriptor params follow the signature, not the annotation.
func TestDescriptorShape_FollowsSignatureOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		annotation string
	}{
		{name: "pattern first", annotation: `"tests", { input in "(.*)\\.in", output = "${1}.out" }`},
		{name: "template first", annotation: `"tests", { output = "${1}.out", input in "(.*)\\.in" }`},
	}

	var outputs []string
	for _, tc := range cases {
		// --- Arrange ---
		files := map[string]string{
			"run/run_test.go": "package run\n\n//datatest:files " + tc.annotation + "\nfunc run(input string, output string) {}\n",
		}

		// --- Act ---
		result := testutil.RunGenerator(t, files, app.Config{})

		// --- Assert ---
		require.NoError(t, result.Err, tc.name)
		src := testutil.RequireGenerated(t, result, "run/"+app.DefaultOutput)
		testutil.AssertContainsCode(t, src,
			`Params: []string{"(.*)\\.in", "${1}.out"},`,
			`Pattern: 0,`,
		)
		outputs = append(outputs, src)
	}

	require.Equal(t, outputs[0], outputs[1], "reordering rules must not change the generated code")
}

// Test for: the pattern index refers to the pattern's parameter position.
func TestDescriptorShape_PatternIndex(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"run/run_test.go": `package run

//datatest:files "tests", { expected = "${1}.out", input in "(.*)\\.in", golden = "${1}.golden" }
func run(expected []byte, golden *[]byte, input string) error { return nil }
`,
	}

	// --- Act ---
	result := testutil.RunGenerator(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err, result.LogOutput)
	src := testutil.RequireGenerated(t, result, "run/"+app.DefaultOutput)
	testutil.AssertContainsCode(t, src,
		`Params: []string{"${1}.out", "${1}.golden", "(.*)\\.in"},`,
		`Pattern: 2,`,
		`arg1 := datatest.MustDerive[[]byte](t, paths[1])`,
		`datatest.AssertResult(t, run(arg0, &arg1, arg2))`,
	)
}

// Test for: a benchmark's controller parameter is never matched.
func TestDescriptorShape_BenchmarkSkipsController(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"run/run_test.go": `package run

import "testing"

//datatest:files "tests", { input in "(.*)\\.in" }
//datatest:bench
func benchRun(b *testing.B, input string) {}
`,
	}

	// --- Act ---
	result := testutil.RunGenerator(t, files, app.Config{Entry: true})

	// --- Assert ---
	require.NoError(t, result.Err, result.LogOutput)
	src := testutil.RequireGenerated(t, result, "run/"+app.DefaultOutput)
	testutil.AssertContainsCode(t, src,
		`Params: []string{"(.*)\\.in"},`,
		`Pattern: 0,`,
		`arg0 := datatest.MustDerive[string](b, paths[0])`,
		`benchRun(b, arg0)`,
		`func BenchmarkDatatest(b *testing.B) {`,
	)
	require.NotContains(t, src, "func TestDatatest(")
}
