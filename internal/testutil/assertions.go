package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Squash collapses runs of white space so that assertions on generated code
// do not depend on gofmt's alignment.
func Squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RequireGenerated returns the content of the generated file at rel,
// failing the test if the run did not produce it.
func RequireGenerated(t *testing.T, result *HarnessResult, rel string) string {
	t.Helper()
	src, ok := result.Generated[rel]
	require.True(t, ok, "expected generated file %s; logs:\n%s", rel, result.LogOutput)
	return src
}

// AssertContainsCode checks that the generated source contains every
// snippet, ignoring differences in white space.
func AssertContainsCode(t *testing.T, src string, snippets ...string) {
	t.Helper()
	squashed := Squash(src)
	for _, s := range snippets {
		require.Contains(t, squashed, Squash(s))
	}
}
