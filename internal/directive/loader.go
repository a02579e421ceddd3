// Package directive implements config.Loader for `//datatest:` comments
// written in the doc comment of the test function:
//
//	//datatest:files "testdata", { input in `(.*)\.in`, output = "${1}.out" }
//	//datatest:cases "testdata/cases.yaml"
//	//datatest:ignore
//	//datatest:bench
package directive

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/annotation"
	"github.com/jcape/datatest/internal/config"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/gosrc"
)

// Verbs understood after the //datatest: prefix.
const (
	VerbFiles  = "files"
	VerbCases  = "cases"
	VerbIgnore = "ignore"
	VerbBench  = "bench"
)

// Loader reads declarations from directive comments.
type Loader struct{}

// NewLoader creates a new directive loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, pkg *gosrc.Package) (*config.Model, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()
	var diags hcl.Diagnostics

	for _, fn := range pkg.SortedFuncs() {
		if len(fn.Directives) == 0 {
			continue
		}
		decl, declDiags := translate(fn)
		diags = append(diags, declDiags...)
		if decl == nil {
			continue
		}
		diags = append(diags, model.Add(decl)...)
		logger.Debug("Found directive declaration.", "func", fn.Name, "kind", decl.Kind.String())
	}
	return model, diags
}

// translate turns one function's directives into a declaration. Functions
// carrying only marker directives produce a warning and no declaration.
func translate(fn *gosrc.Func) (*config.Declaration, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var decl *config.Declaration
	var ignore, bench bool

	for _, d := range fn.Directives {
		switch d.Verb {
		case VerbFiles, VerbCases:
			if decl != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Conflicting directives",
					Detail:   fmt.Sprintf("function %s already has a //datatest:%s directive", fn.Name, decl.Kind),
					Subject:  d.Range.Ptr(),
				})
				continue
			}
			next := &config.Declaration{Func: fn.Name, Range: d.Range}
			if d.Verb == VerbFiles {
				rules, ruleDiags := annotation.ParseFiles(d.Args)
				diags = append(diags, ruleDiags...)
				if rules == nil {
					// Keep a placeholder so a second directive is still
					// reported as a conflict, but emit nothing.
					decl = &config.Declaration{Kind: config.KindFiles}
					continue
				}
				next.Kind, next.Rules = config.KindFiles, rules
			} else {
				cases, caseDiags := annotation.ParseCases(d.Args)
				diags = append(diags, caseDiags...)
				if cases == nil {
					decl = &config.Declaration{Kind: config.KindCases}
					continue
				}
				next.Kind, next.Cases = config.KindCases, cases
			}
			decl = next
		case VerbIgnore, VerbBench:
			if d.Args.Text != "" {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unexpected directive arguments",
					Detail:   fmt.Sprintf("//datatest:%s takes no arguments", d.Verb),
					Subject:  d.Range.Ptr(),
				})
			}
			if d.Verb == VerbIgnore {
				ignore = true
			} else {
				bench = true
			}
		default:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown directive",
				Detail:   fmt.Sprintf("unknown directive //datatest:%s; expected files, cases, ignore or bench", d.Verb),
				Subject:  d.Range.Ptr(),
			})
		}
	}

	if decl == nil {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Marker without a test directive",
			Detail:   fmt.Sprintf("function %s has datatest markers but no //datatest:files or //datatest:cases directive", fn.Name),
			Subject:  fn.Range.Ptr(),
		})
	}
	if decl.Func == "" || diags.HasErrors() {
		return nil, diags
	}
	decl.Ignore, decl.Bench = ignore, bench
	return decl, diags
}
