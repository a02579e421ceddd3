package matcher

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/annotation"
	"github.com/jcape/datatest/internal/config"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/gosrc"
)

// Match validates every declaration of model against pkg. A declaration
// that fails produces diagnostics and no plan; the others are still
// matched.
func Match(ctx context.Context, pkg *gosrc.Package, model *config.Model) (*Result, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	res := &Result{}
	var diags hcl.Diagnostics

	for _, decl := range model.Sorted() {
		fn, ok := pkg.Funcs[decl.Func]
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown test function",
				Detail:   fmt.Sprintf("package %s has no top-level function named %s", pkg.Name, decl.Func),
				Subject:  decl.Range.Ptr(),
			})
			continue
		}

		switch decl.Kind {
		case config.KindFiles:
			plan, planDiags := MatchFiles(pkg, fn, decl)
			diags = append(diags, planDiags...)
			if plan != nil {
				res.Files = append(res.Files, plan)
			}
		case config.KindCases:
			plan, planDiags := MatchCases(pkg, fn, decl)
			diags = append(diags, planDiags...)
			if plan != nil {
				res.Cases = append(res.Cases, plan)
			}
		}
	}

	logger.Debug("Matched declarations.", "package", pkg.Name, "files", len(res.Files), "cases", len(res.Cases))
	return res, diags
}

// MatchFiles binds fn's parameters to the rules of a file-driven
// declaration.
func MatchFiles(pkg *gosrc.Package, fn *gosrc.Func, decl *config.Declaration) (*Plan, hcl.Diagnostics) {
	sig, diags := readSignature(pkg, fn, decl.Bench)
	rules := decl.Rules

	plan := &Plan{
		Func:         fn.Name,
		Decl:         decl,
		Pattern:      -1,
		Bench:        decl.Bench,
		ReturnsError: sig.returnsError,
	}
	used := make(map[string]bool, len(rules.Rules))

	for _, p := range sig.params {
		if p.name == "" || p.name == "_" || !simpleType(p.typ) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected argument",
				Detail:   unexpectedArgument,
				Subject:  p.rng.Ptr(),
			})
			continue
		}

		rule, ok := rules.Rules[p.name]
		if !ok {
			detail := fmt.Sprintf("mapping is not defined for the argument `%s`", p.name)
			if suggestion := nameSuggestion(p.name, rules.Names()); suggestion != "" {
				detail += fmt.Sprintf("; did you mean %q?", suggestion)
			}
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unmapped argument",
				Detail:   detail,
				Subject:  p.rng.Ptr(),
			})
			continue
		}
		used[p.name] = true

		if rule.Kind == annotation.Pattern {
			if plan.Pattern >= 0 {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate pattern",
					Detail:   fmt.Sprintf("two patterns are not allowed; `%s` is already the pattern argument", plan.Args[plan.Pattern].Name),
					Subject:  rule.ArgRange.Ptr(),
				})
				continue
			}
			plan.Pattern = len(plan.Args)
			plan.IgnoreFn = rule.IgnoreFn
		}

		typ, ref := elemType(p.typ)
		plan.Args = append(plan.Args, Arg{Name: p.name, Type: typ, Ref: ref, Rule: rule, Index: p.index})
	}

	if plan.Pattern < 0 && (!diags.HasErrors() || !hasPattern(rules)) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing pattern",
			Detail:   "must have exactly one pattern mapping (`<arg> in \"<regexp>\"`)",
			Subject:  decl.Range.Ptr(),
		})
	}

	for _, name := range rules.Names() {
		if used[name] {
			continue
		}
		if rule := rules.Rules[name]; rule.Kind == annotation.Pattern && plan.Pattern >= 0 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate pattern",
				Detail:   fmt.Sprintf("two patterns are not allowed; `%s` is already the pattern argument", plan.Args[plan.Pattern].Name),
				Subject:  rule.ArgRange.Ptr(),
			})
			continue
		}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Unused argument mapping",
			Detail:   fmt.Sprintf("%s has no parameter named `%s`; the mapping is ignored", fn.Name, name),
			Subject:  rules.Rules[name].ArgRange.Ptr(),
		})
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return plan, diags
}

// MatchCases binds fn's single case parameter.
func MatchCases(pkg *gosrc.Package, fn *gosrc.Func, decl *config.Declaration) (*CasePlan, hcl.Diagnostics) {
	sig, diags := readSignature(pkg, fn, decl.Bench)

	switch {
	case len(sig.params) == 0:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing case parameter",
			Detail:   "a case-driven test takes exactly one case parameter",
			Subject:  fn.Range.Ptr(),
		})
	case len(sig.params) > 1:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected argument",
			Detail:   "a case-driven test takes exactly one case parameter",
			Subject:  sig.params[1].rng.Ptr(),
		})
	case !simpleType(sig.params[0].typ):
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected argument",
			Detail:   unexpectedArgument,
			Subject:  sig.params[0].rng.Ptr(),
		})
	}
	if diags.HasErrors() {
		return nil, diags
	}

	typ, ref := elemType(sig.params[0].typ)
	return &CasePlan{
		Func:         fn.Name,
		Decl:         decl,
		Type:         typ,
		Ref:          ref,
		Bench:        decl.Bench,
		ReturnsError: sig.returnsError,
	}, diags
}

func hasPattern(rules *annotation.RuleSet) bool {
	for _, r := range rules.Rules {
		if r.Kind == annotation.Pattern {
			return true
		}
	}
	return false
}
