package directive

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

func loadPackage(t *testing.T, src string) *gosrc.Package {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x_test.go"), []byte(src), 0o644))

	ctx := ctxlog.Discard(context.Background())
	pkgs, diags := gosrc.Load(ctx, dir, "")
	require.False(t, diags.HasErrors(), diags.Error())
	require.Len(t, pkgs, 1)
	return pkgs[0]
}

func load(t *testing.T, src string) (*config.Model, hcl.Diagnostics) {
	t.Helper()
	pkg := loadPackage(t, src)
	return NewLoader().Load(context.Background(), pkg)
}

func TestLoader_Load(t *testing.T) {
	t.Run("files and cases", func(t *testing.T) {
		// Arrange
		src := "package x\n\n" +
			"//datatest:files \"testdata\", { input in `(.*)\\.in`, output = \"${1}.out\" }\n" +
			"//datatest:bench\n" +
			"func checkConvert(b *testing.B, input string, output []byte) {}\n\n" +
			"// checkCases runs the YAML cases.\n" +
			"//datatest:cases \"cases.yaml\"\n" +
			"//datatest:ignore\n" +
			"func checkCases(c int) error { return nil }\n\n" +
			"func helper() {}\n"

		// Act
		model, diags := load(t, src)

		// Assert
		require.Empty(t, diags)
		require.Len(t, model.Declarations, 2)

		files := model.Declarations["checkConvert"]
		require.NotNil(t, files)
		assert.Equal(t, config.KindFiles, files.Kind)
		assert.True(t, files.Bench)
		assert.False(t, files.Ignore)
		assert.Equal(t, "testdata", files.Rules.Root)
		assert.Equal(t, []string{"input", "output"}, files.Rules.Names())
		assert.Equal(t, annotation.Pattern, files.Rules.Rules["input"].Kind)
		assert.Equal(t, 3, files.Range.Start.Line)

		cases := model.Declarations["checkCases"]
		require.NotNil(t, cases)
		assert.Equal(t, config.KindCases, cases.Kind)
		assert.True(t, cases.Ignore)
		assert.Equal(t, "cases.yaml", cases.Cases.Path)
	})

	t.Run("case source expression", func(t *testing.T) {
		src := "package x\n\n//datatest:cases loadCases(\"a\")\nfunc checkCases(c int) {}\n"

		model, diags := load(t, src)

		require.Empty(t, diags)
		assert.Equal(t, `loadCases("a")`, model.Declarations["checkCases"].Cases.Expr)
	})
}

func TestLoader_Load_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		severity hcl.DiagnosticSeverity
		summary  string
		line     int
	}{
		{
			name:     "unknown verb",
			src:      "package x\n\n//datatest:files \"d\", { a in \"x\" }\n//datatest:skip\nfunc check(a string) {}\n",
			severity: hcl.DiagError,
			summary:  "Unknown directive",
			line:     4,
		},
		{
			name:     "files and cases together",
			src:      "package x\n\n//datatest:files \"d\", { a in \"x\" }\n//datatest:cases \"c.yaml\"\nfunc check(a string) {}\n",
			severity: hcl.DiagError,
			summary:  "Conflicting directives",
			line:     4,
		},
		{
			name:     "marker with arguments",
			src:      "package x\n\n//datatest:cases \"c.yaml\"\n//datatest:ignore please\nfunc check(a string) {}\n",
			severity: hcl.DiagError,
			summary:  "Unexpected directive arguments",
			line:     4,
		},
		{
			name:     "marker alone",
			src:      "package x\n\n//datatest:bench\nfunc check(a string) {}\n",
			severity: hcl.DiagWarning,
			summary:  "Marker without a test directive",
			line:     4,
		},
		{
			name:     "malformed rules",
			src:      "package x\n\n//datatest:files \"d\", { a ~ \"x\" }\nfunc check(a string) {}\n",
			severity: hcl.DiagError,
			summary:  "Malformed annotation",
			line:     3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model, diags := load(t, tc.src)

			require.Len(t, diags, 1, diags.Error())
			assert.Equal(t, tc.severity, diags[0].Severity)
			assert.Equal(t, tc.summary, diags[0].Summary)
			assert.Equal(t, tc.line, diags[0].Subject.Start.Line)
			assert.Empty(t, model.Declarations)
		})
	}
}
