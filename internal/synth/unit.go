package synth

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/gosrc"
	"github.com/jcape/datatest/internal/matcher"
)

// unit is the template data of one generated file.
type unit struct {
	Generator string
	Package   string
	Runtime   string
	// StdImports share the group of "testing"; Imports share the group of
	// the runtime.
	StdImports []gosrc.Import
	Imports    []gosrc.Import
	Files     []filesView
	Cases     []casesView

	Register   string
	Entry      bool
	HasTest    bool
	HasBench   bool
	TestEntry  string
	BenchEntry string
}

type argView struct {
	Type string
}

type filesView struct {
	Suffix   string
	Name     string
	Ignore   bool
	Root     string
	Params   []string
	Pattern  int
	IgnoreFn string
	Bench    bool

	TB     string
	TBType string
	Args   []argView
	Call   string

	ReturnsError bool
}

type casesView struct {
	Suffix string
	Name   string
	Ignore bool
	Bench  bool
	Type   string
	Source string

	TB     string
	TBType string
	Call   string

	ReturnsError bool
}

func newUnit(pkg *gosrc.Package, res *matcher.Result, opts Options) (*unit, hcl.Diagnostics) {
	u := &unit{
		Generator: opts.Generator,
		Package:   pkg.Name,
		Runtime:   RuntimePath,
	}
	if u.Generator == "" {
		u.Generator = "datatestgen"
	}

	diags := registration(pkg, res, opts, u)
	imps, importDiags := collectImports(pkg)
	diags = append(diags, importDiags...)
	u.StdImports, u.Imports = splitStd(imps)

	suffixes := make(map[string]string)
	claim := func(fn string, at hcl.Range) (string, bool) {
		suffix := exportedName(fn)
		if prev, taken := suffixes[suffix]; taken {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Generated name collision",
				Detail:   fmt.Sprintf("%s and %s would both generate datatestDesc%s; rename one of them", prev, fn, suffix),
				Subject:  at.Ptr(),
			})
			return "", false
		}
		suffixes[suffix] = fn
		return suffix, true
	}

	for _, p := range res.Files {
		suffix, ok := claim(p.Func, p.Decl.Range)
		if !ok {
			continue
		}
		u.Files = append(u.Files, filesViewOf(pkg, p, suffix))
	}
	for _, p := range res.Cases {
		suffix, ok := claim(p.Func, p.Decl.Range)
		if !ok {
			continue
		}
		u.Cases = append(u.Cases, casesViewOf(pkg, p, suffix))
	}
	return u, diags
}

func filesViewOf(pkg *gosrc.Package, p *matcher.Plan, suffix string) filesView {
	v := filesView{
		Suffix:       suffix,
		Name:         pkg.Qualify(p.Func),
		Ignore:       p.Decl.Ignore,
		Root:         p.Decl.Rules.Root,
		Params:       p.Params(),
		Pattern:      p.Pattern,
		IgnoreFn:     p.IgnoreFn,
		Bench:        p.Bench,
		ReturnsError: p.ReturnsError,
	}
	v.TB, v.TBType = controller(p.Bench)

	var args []string
	if p.Bench {
		args = append(args, v.TB)
	}
	for i, a := range p.Args {
		v.Args = append(v.Args, argView{Type: a.Type})
		if a.Ref {
			args = append(args, "&arg"+strconv.Itoa(i))
		} else {
			args = append(args, "arg"+strconv.Itoa(i))
		}
	}
	v.Call = p.Func + "(" + strings.Join(args, ", ") + ")"
	return v
}

func casesViewOf(pkg *gosrc.Package, p *matcher.CasePlan, suffix string) casesView {
	v := casesView{
		Suffix:       suffix,
		Name:         pkg.Qualify(p.Func),
		Ignore:       p.Decl.Ignore,
		Bench:        p.Bench,
		Type:         p.Type,
		ReturnsError: p.ReturnsError,
	}
	v.TB, v.TBType = controller(p.Bench)

	if src := p.Decl.Cases; src.Expr != "" {
		v.Source = "(" + src.Expr + ")"
	} else {
		v.Source = fmt.Sprintf("datatest.YAML[%s](%s)", p.Type, strconv.Quote(src.Path))
	}

	arg := "c"
	if p.Ref {
		arg = "&c"
	}
	if p.Bench {
		v.Call = p.Func + "(" + v.TB + ", " + arg + ")"
	} else {
		v.Call = p.Func + "(" + arg + ")"
	}
	return v
}

func controller(bench bool) (string, string) {
	if bench {
		return "b", "*testing.B"
	}
	return "t", "*testing.T"
}

// exportedName upper-cases the first letter of fn so that it reads as one
// word after the datatest prefixes.
func exportedName(fn string) string {
	r, size := utf8.DecodeRuneInString(fn)
	return string(unicode.ToUpper(r)) + fn[size:]
}

// collectImports gathers the imports of every file of pkg so that types
// and predicates keep resolving in the generated file. Blank and dot
// imports are skipped. A name bound to different paths in different files
// cannot be carried over and is reported.
func collectImports(pkg *gosrc.Package) ([]gosrc.Import, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	byName := map[string]string{
		"testing":  "testing",
		"datatest": RuntimePath,
	}
	seen := make(map[gosrc.Import]bool)
	var out []gosrc.Import

	for _, file := range pkg.Files {
		for _, imp := range file.Imports {
			if imp.Name == "_" || imp.Name == "." {
				continue
			}
			name := imp.Name
			if name == "" {
				name = gosrc.AssumedName(imp.Path)
			}
			if path, ok := byName[name]; ok && path != imp.Path {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Conflicting import name",
					Detail: fmt.Sprintf("%s imports %q as %s, which is already bound to %q; use the same name for the same package in every file",
						file.Path, imp.Path, name, path),
					Subject: &hcl.Range{Filename: file.Path},
				})
				continue
			}
			byName[name] = imp.Path
			if (imp.Path == "testing" && name == "testing") || (imp.Path == RuntimePath && name == "datatest") {
				continue
			}
			if imp.Name == gosrc.AssumedName(imp.Path) {
				imp.Name = ""
			}
			if seen[imp] {
				continue
			}
			seen[imp] = true
			out = append(out, imp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out, diags
}

// splitStd separates standard library imports from the rest, keeping the
// order of each.
func splitStd(imps []gosrc.Import) (std, other []gosrc.Import) {
	for _, imp := range imps {
		if isStd(imp.Path) {
			std = append(std, imp)
		} else {
			other = append(other, imp)
		}
	}
	return std, other
}

// isStd uses the go command's rule: standard library paths have no dot in
// their first element.
func isStd(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
