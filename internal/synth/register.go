package synth

import (
	"fmt"
	"go/token"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/gosrc"
	"github.com/jcape/datatest/internal/matcher"
)

// DefaultRegister is the name of the generated registration function.
const DefaultRegister = "registerDatatests"

// Entry points generated with Options.Entry.
const (
	TestEntry  = "TestDatatest"
	BenchEntry = "BenchmarkDatatest"
)

// registration decides the names emitted by register.go.tmpl and checks
// them against the package: generated functions must not collide with
// declared ones. Without Entry the package calls the registration function
// from its own TestMain or test.
func registration(pkg *gosrc.Package, res *matcher.Result, opts Options, u *unit) hcl.Diagnostics {
	var diags hcl.Diagnostics

	u.Register = opts.Register
	if u.Register == "" {
		u.Register = DefaultRegister
	}
	if !token.IsIdentifier(u.Register) {
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid registration function name",
			Detail:   fmt.Sprintf("%q is not a Go identifier", u.Register),
		})
	}

	names := []string{u.Register}
	if opts.Entry {
		u.Entry = true
		u.HasTest, u.HasBench = res.HasTest(), res.HasBench()
		if u.HasTest {
			names = append(names, TestEntry)
		}
		if u.HasBench {
			names = append(names, BenchEntry)
		}
	}
	u.TestEntry, u.BenchEntry = TestEntry, BenchEntry

	for _, name := range names {
		fn, ok := pkg.Funcs[name]
		if !ok {
			continue
		}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Generated function already declared",
			Detail:   fmt.Sprintf("package %s already declares %s, which the generated file defines", pkg.Name, name),
			Subject:  fn.Range.Ptr(),
		})
	}
	return diags
}
