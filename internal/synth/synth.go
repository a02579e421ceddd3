// Package synth renders the Go source file holding, for every matched test,
// a descriptor, the trampoline adapting the harness calling convention to
// the annotated function and, for case-driven tests, the describe function.
// The file ends with the registration function and optional go test entry
// points.
package synth

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/gosrc"
	"github.com/jcape/datatest/internal/matcher"
	"golang.org/x/tools/imports"
)

// RuntimePath is the import path of the runtime package used by generated
// code.
const RuntimePath = "github.com/jcape/datatest"

//go:embed templates/*.tmpl
var templateFS embed.FS

var tmpl = template.Must(template.New("datatest").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"quoteList": func(items []string) string {
		quoted := make([]string, len(items))
		for i, s := range items {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, ", ")
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

// Options control the shape of the generated file.
type Options struct {
	// Generator names the tool in the "Code generated" header.
	Generator string
	// Register is the name of the generated registration function,
	// DefaultRegister when empty.
	Register string
	// Entry adds TestDatatest and BenchmarkDatatest.
	Entry bool
	// Filename is used in diagnostics and by the import fixer.
	Filename string
}

// Generate renders the plans of res as the source of one file in pkg.
// It returns nil source together with error diagnostics when the file
// cannot be produced.
func Generate(ctx context.Context, pkg *gosrc.Package, res *matcher.Result, opts Options) ([]byte, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)

	unit, diags := newUnit(pkg, res, opts)
	if diags.HasErrors() {
		return nil, diags
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "descriptors.go.tmpl", unit); err != nil {
		return nil, append(diags, renderFailure(opts.Filename, err))
	}
	if err := tmpl.ExecuteTemplate(&buf, "register.go.tmpl", unit); err != nil {
		return nil, append(diags, renderFailure(opts.Filename, err))
	}

	// Every import of the package is copied in, so the fixer only ever
	// removes the unused ones.
	src, err := imports.Process(opts.Filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		logger.Debug("Generated source does not parse.", "file", opts.Filename, "source", buf.String())
		return nil, append(diags, renderFailure(opts.Filename, err))
	}

	logger.Debug("Rendered datatest source.", "file", opts.Filename, "files", len(unit.Files), "cases", len(unit.Cases), "bytes", len(src))
	return src, diags
}

func renderFailure(filename string, err error) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Failed to render generated code",
		Detail:   fmt.Sprintf("%s: %s", filename, err),
		Subject:  &hcl.Range{Filename: filename},
	}
}
