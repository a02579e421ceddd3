package matcher

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/gosrc"
)

const unexpectedArgument = "unexpected argument; only simple argument types are allowed " +
	"(`string`, `*string`, `[]byte`, `*[]byte`, `datatest.Path`, etc)"

// param is one declared parameter. Grouped declarations such as
// `a, b string` yield one param per name.
type param struct {
	name  string
	typ   ast.Expr
	rng   hcl.Range
	index int
}

type signature struct {
	params       []param
	returnsError bool
}

// readSignature flattens fn's parameters and checks the parts of the
// signature shared by both test kinds. For benchmarks the leading
// *testing.B is validated and removed from params.
func readSignature(pkg *gosrc.Package, fn *gosrc.Func, bench bool) (*signature, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	ft := fn.Decl.Type
	sig := &signature{}

	for _, prefix := range []string{"Test", "Benchmark", "Example", "Fuzz"} {
		if isTest(fn.Name, prefix) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Reserved test name",
				Detail: fmt.Sprintf("%s would also be collected by go test as a %s function; use an unexported name such as check%s",
					fn.Name, prefix, strings.TrimPrefix(fn.Name, prefix)),
				Subject: fn.Range.Ptr(),
			})
			break
		}
	}

	if ft.TypeParams != nil && ft.TypeParams.NumFields() > 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Generic test function",
			Detail:   "type parameters are not supported on datatest functions",
			Subject:  pkg.RangeOf(ft.TypeParams).Ptr(),
		})
	}

	if ft.Results != nil && ft.Results.NumFields() > 0 {
		if ft.Results.NumFields() == 1 && isIdent(ft.Results.List[0].Type, "error") {
			sig.returnsError = true
		} else {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported result",
				Detail:   "a datatest function returns nothing or a single error",
				Subject:  pkg.RangeOf(ft.Results).Ptr(),
			})
		}
	}

	index := 0
	for _, field := range ft.Params.List {
		if len(field.Names) == 0 {
			sig.params = append(sig.params, param{typ: field.Type, rng: pkg.RangeOf(field), index: index})
			index++
			continue
		}
		for _, name := range field.Names {
			sig.params = append(sig.params, param{name: name.Name, typ: field.Type, rng: pkg.RangeOf(name), index: index})
			index++
		}
	}

	if bench {
		testing := fn.File.ImportName("testing")
		switch {
		case len(sig.params) == 0:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing benchmark parameter",
				Detail:   "a benchmark takes *testing.B as its first parameter",
				Subject:  fn.Range.Ptr(),
			})
		case !isTestingB(sig.params[0].typ, testing):
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid benchmark parameter",
				Detail:   fmt.Sprintf("the first parameter of a benchmark must be *testing.B, found %s", types.ExprString(sig.params[0].typ)),
				Subject:  pkg.RangeOf(sig.params[0].typ).Ptr(),
			})
			// The rejected parameter is still the controller; drop it so the
			// rest of the signature is checked as usual.
			fallthrough
		default:
			sig.params = sig.params[1:]
		}
	}
	return sig, diags
}

// simpleType reports whether typ can be derived by the runtime: named
// types, slices, arrays and instantiated generics, optionally behind one
// pointer.
func simpleType(typ ast.Expr) bool {
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	switch t := typ.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		return true
	case *ast.ArrayType:
		return simpleType(t.Elt)
	case *ast.IndexExpr:
		return simpleType(t.X)
	case *ast.IndexListExpr:
		return simpleType(t.X)
	}
	return false
}

// elemType splits a single pointer level off typ.
func elemType(typ ast.Expr) (string, bool) {
	if star, ok := typ.(*ast.StarExpr); ok {
		return types.ExprString(star.X), true
	}
	return types.ExprString(typ), false
}

func isTestingB(typ ast.Expr, testing string) bool {
	if testing == "" {
		return false
	}
	star, ok := typ.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	return isIdent(sel.X, testing) && sel.Sel.Name == "B"
}

func isIdent(e ast.Expr, name string) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == name
}

// isTest mirrors the go tool's rule for collecting test functions.
func isTest(name, prefix string) bool {
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	if len(name) == len(prefix) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name[len(prefix):])
	return !unicode.IsLower(r)
}

// nameSuggestion returns the element of suggestions closest to given, or ""
// when none is close enough to be a likely typo.
func nameSuggestion(given string, suggestions []string) string {
	for _, s := range suggestions {
		if levenshtein.Distance(given, s, nil) < 3 {
			return s
		}
	}
	return ""
}
