package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/annotation"
	"github.com/jcape/datatest/internal/config"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/gosrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

const goSource = `package conv

func checkConvert(input string, output []byte) {}

func checkCases(c int) {}
`

// loadDir writes files into a fresh directory and loads its packages.
func loadDir(t *testing.T, files map[string]string) []*gosrc.Package {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	pkgs, diags := gosrc.Load(testContext(), dir, "")
	require.False(t, diags.HasErrors(), diags.Error())
	return pkgs
}

func TestLoader_Load(t *testing.T) {
	// Arrange
	pkgs := loadDir(t, map[string]string{
		"conv_test.go": goSource,
		"datatest.hcl": `
files "checkConvert" {
  root  = "testdata"
  bench = true

  arg "input" {
    pattern = "(.*)\\.in"
    unless  = "isSlow"
  }
  arg "output" {
    template = "$${1}.out"
  }
}

cases "checkCases" {
  source = "loadCases(\"a\")"
  ignore = "true"
}
`,
	})

	// Act
	model, diags := NewLoader("").Load(testContext(), pkgs[0])

	// Assert
	require.Empty(t, diags)
	require.Len(t, model.Declarations, 2)

	files := model.Declarations["checkConvert"]
	require.NotNil(t, files)
	assert.Equal(t, config.KindFiles, files.Kind)
	assert.True(t, files.Bench)
	assert.False(t, files.Ignore)
	assert.Equal(t, 2, files.Range.Start.Line)
	assert.Equal(t, "testdata", files.Rules.Root)

	input := files.Rules.Rules["input"]
	require.NotNil(t, input)
	assert.Equal(t, annotation.Pattern, input.Kind)
	assert.Equal(t, `(.*)\.in`, input.Expr)
	assert.Equal(t, "isSlow", input.IgnoreFn)
	assert.Equal(t, 7, input.ExprRange.Start.Line)

	output := files.Rules.Rules["output"]
	require.NotNil(t, output)
	assert.Equal(t, annotation.Template, output.Kind)
	assert.Equal(t, "${1}.out", output.Expr)

	cases := model.Declarations["checkCases"]
	require.NotNil(t, cases)
	assert.Equal(t, config.KindCases, cases.Kind)
	assert.True(t, cases.Ignore, "string \"true\" converts to bool")
	assert.Equal(t, `loadCases("a")`, cases.Cases.Expr)
	assert.Empty(t, cases.Cases.Path)
}

func TestLoader_Load_MissingFile(t *testing.T) {
	pkgs := loadDir(t, map[string]string{"conv_test.go": goSource})

	model, diags := NewLoader("").Load(testContext(), pkgs[0])

	assert.Empty(t, diags)
	assert.Empty(t, model.Declarations)
}

func TestLoader_Load_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		hcl     string
		summary string
	}{
		{
			name:    "pattern and template",
			hcl:     "files \"checkConvert\" {\n  root = \"d\"\n  arg \"input\" {\n    pattern = \"x\"\n    template = \"y\"\n  }\n}\n",
			summary: "Conflicting argument mapping",
		},
		{
			name:    "neither pattern nor template",
			hcl:     "files \"checkConvert\" {\n  root = \"d\"\n  arg \"input\" {}\n}\n",
			summary: "Missing argument mapping",
		},
		{
			name:    "unless on template",
			hcl:     "files \"checkConvert\" {\n  root = \"d\"\n  arg \"output\" {\n    template = \"x\"\n    unless = \"f\"\n  }\n}\n",
			summary: "Malformed annotation",
		},
		{
			name:    "bad predicate",
			hcl:     "files \"checkConvert\" {\n  root = \"d\"\n  arg \"input\" {\n    pattern = \"x\"\n    unless = \"a.b.c\"\n  }\n}\n",
			summary: "Invalid predicate",
		},
		{
			name:    "bad regexp",
			hcl:     "files \"checkConvert\" {\n  root = \"d\"\n  arg \"input\" {\n    pattern = \"(\"\n  }\n}\n",
			summary: "Invalid pattern",
		},
		{
			name:    "duplicate arg",
			hcl:     "files \"checkConvert\" {\n  root = \"d\"\n  arg \"input\" {\n    pattern = \"x\"\n  }\n  arg \"input\" {\n    pattern = \"y\"\n  }\n}\n",
			summary: "Duplicate argument mapping",
		},
		{
			name:    "yaml and source",
			hcl:     "cases \"checkCases\" {\n  yaml = \"a.yaml\"\n  source = \"f()\"\n}\n",
			summary: "Conflicting case source",
		},
		{
			name:    "no case source",
			hcl:     "cases \"checkCases\" {\n}\n",
			summary: "Missing case source",
		},
		{
			name:    "bad source expression",
			hcl:     "cases \"checkCases\" {\n  source = \"f(\"\n}\n",
			summary: "Invalid case source expression",
		},
		{
			name:    "unknown function",
			hcl:     "cases \"checkMissing\" {\n  yaml = \"a.yaml\"\n}\n",
			summary: "Unknown test function",
		},
		{
			name:    "wrong value type",
			hcl:     "cases \"checkCases\" {\n  yaml = \"a.yaml\"\n  bench = \"sometimes\"\n}\n",
			summary: "Incorrect attribute value type",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkgs := loadDir(t, map[string]string{"conv_test.go": goSource, "datatest.hcl": tc.hcl})

			model, diags := NewLoader("").Load(testContext(), pkgs[0])

			require.True(t, diags.HasErrors())
			assert.Equal(t, tc.summary, diags[0].Summary, diags.Error())
			assert.Empty(t, model.Declarations)
		})
	}
}

func TestLoader_Load_SiblingPackages(t *testing.T) {
	pkgs := loadDir(t, map[string]string{
		"conv_test.go": goSource,
		"ext_test.go":  "package conv_test\n\nfunc checkExternal(input string) {}\n",
		"datatest.hcl": `
files "checkExternal" {
  root = "d"
  arg "input" {
    pattern = ".*"
  }
}

files "checkNowhere" {
  root = "d"
  arg "input" {
    pattern = ".*"
  }
}

bogus "x" {}
`,
	})
	require.Len(t, pkgs, 2)
	internal, external := pkgs[0], pkgs[1]

	internalModel, internalDiags := NewLoader("").Load(testContext(), internal)
	externalModel, externalDiags := NewLoader("").Load(testContext(), external)

	assert.Empty(t, internalModel.Declarations)
	require.Len(t, internalDiags, 2, internalDiags.Error())
	var summaries []string
	for _, d := range internalDiags {
		summaries = append(summaries, d.Summary)
	}
	assert.ElementsMatch(t, []string{"Unsupported block type", "Unknown test function"}, summaries)

	require.Empty(t, externalDiags)
	require.Contains(t, externalModel.Declarations, "checkExternal")
	assert.Equal(t, hcl.DiagError, internalDiags[1].Severity)
}
