package hcl

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/jcape/datatest/internal/annotation"
	"github.com/jcape/datatest/internal/config"
)

type filesBody struct {
	Root   hcl.Expression `hcl:"root"`
	Ignore hcl.Expression `hcl:"ignore,optional"`
	Bench  hcl.Expression `hcl:"bench,optional"`
	Remain hcl.Body       `hcl:",remain"`
}

type argBody struct {
	Pattern  hcl.Expression `hcl:"pattern,optional"`
	Template hcl.Expression `hcl:"template,optional"`
	Unless   hcl.Expression `hcl:"unless,optional"`
}

type casesBody struct {
	YAML   hcl.Expression `hcl:"yaml,optional"`
	Source hcl.Expression `hcl:"source,optional"`
	Ignore hcl.Expression `hcl:"ignore,optional"`
	Bench  hcl.Expression `hcl:"bench,optional"`
}

var argSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "arg", LabelNames: []string{"name"}},
	},
}

// translateFiles converts a `files` block into a declaration.
func translateFiles(ctx context.Context, block *hcl.Block) (*config.Declaration, hcl.Diagnostics) {
	var body filesBody
	diags := gohcl.DecodeBody(block.Body, nil, &body)
	if diags.HasErrors() {
		return nil, diags
	}

	decl := &config.Declaration{Func: block.Labels[0], Kind: config.KindFiles, Range: block.DefRange}
	rules := &annotation.RuleSet{RootRange: body.Root.Range(), Rules: make(map[string]*annotation.Rule)}

	ok, d := decodeExpr(ctx, body.Root, &rules.Root)
	diags = append(diags, d...)
	if !ok && !d.HasErrors() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing root",
			Detail:   "the root directory of a files block must not be null",
			Subject:  body.Root.Range().Ptr(),
		})
	}
	diags = append(diags, decodeFlags(ctx, decl, body.Ignore, body.Bench)...)

	content, contentDiags := body.Remain.Content(argSchema)
	diags = append(diags, contentDiags...)
	for _, ab := range content.Blocks {
		rule, ruleDiags := translateArg(ctx, ab)
		diags = append(diags, ruleDiags...)
		if rule == nil {
			continue
		}
		if prev, dup := rules.Rules[rule.Arg]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate argument mapping",
				Detail:   fmt.Sprintf("argument %s is already mapped at %s", rule.Arg, prev.ArgRange),
				Subject:  rule.ArgRange.Ptr(),
			})
			continue
		}
		rules.Rules[rule.Arg] = rule
	}

	if diags.HasErrors() {
		return nil, diags
	}
	decl.Rules = rules
	return decl, diags
}

// translateArg converts one `arg` block into a rule. Exactly one of
// pattern and template must be set; unless may only accompany a pattern.
func translateArg(ctx context.Context, block *hcl.Block) (*annotation.Rule, hcl.Diagnostics) {
	var body argBody
	diags := gohcl.DecodeBody(block.Body, nil, &body)
	if diags.HasErrors() {
		return nil, diags
	}

	rule := &annotation.Rule{Arg: block.Labels[0], ArgRange: block.LabelRanges[0]}

	var pattern, template string
	hasPattern, d := decodeExpr(ctx, body.Pattern, &pattern)
	diags = append(diags, d...)
	hasTemplate, d := decodeExpr(ctx, body.Template, &template)
	diags = append(diags, d...)
	if diags.HasErrors() {
		return nil, diags
	}

	switch {
	case hasPattern && hasTemplate:
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Conflicting argument mapping",
			Detail:   fmt.Sprintf("arg %q sets both pattern and template", rule.Arg),
			Subject:  block.DefRange.Ptr(),
		})
	case hasPattern:
		rule.Kind, rule.Expr, rule.ExprRange = annotation.Pattern, pattern, body.Pattern.Range()
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid pattern",
				Detail:   err.Error(),
				Subject:  rule.ExprRange.Ptr(),
			})
		}
	case hasTemplate:
		rule.Kind, rule.Expr, rule.ExprRange = annotation.Template, template, body.Template.Range()
	default:
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing argument mapping",
			Detail:   fmt.Sprintf("arg %q needs either a pattern or a template", rule.Arg),
			Subject:  block.DefRange.Ptr(),
		})
	}

	var unless string
	hasUnless, d := decodeExpr(ctx, body.Unless, &unless)
	diags = append(diags, d...)
	if !hasUnless {
		return rule, diags
	}
	if rule.Kind != annotation.Pattern {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Malformed annotation",
			Detail:   "`unless` is only allowed together with `pattern`",
			Subject:  body.Unless.Range().Ptr(),
		})
	}
	if !isFuncPath(unless) {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid predicate",
			Detail:   fmt.Sprintf("%q is not a function name or a package-qualified function name", unless),
			Subject:  body.Unless.Range().Ptr(),
		})
	}
	rule.IgnoreFn = unless
	return rule, diags
}

// translateCases converts a `cases` block into a declaration.
func translateCases(ctx context.Context, block *hcl.Block) (*config.Declaration, hcl.Diagnostics) {
	var body casesBody
	diags := gohcl.DecodeBody(block.Body, nil, &body)
	if diags.HasErrors() {
		return nil, diags
	}

	decl := &config.Declaration{Func: block.Labels[0], Kind: config.KindCases, Range: block.DefRange}
	diags = append(diags, decodeFlags(ctx, decl, body.Ignore, body.Bench)...)

	cases := &annotation.CaseSource{}
	hasYAML, d := decodeExpr(ctx, body.YAML, &cases.Path)
	diags = append(diags, d...)
	hasSource, d := decodeExpr(ctx, body.Source, &cases.Expr)
	diags = append(diags, d...)
	if diags.HasErrors() {
		return nil, diags
	}

	switch {
	case hasYAML && hasSource:
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Conflicting case source",
			Detail:   "a cases block sets either yaml or source, not both",
			Subject:  block.DefRange.Ptr(),
		})
	case hasYAML:
		cases.Range = body.YAML.Range()
	case hasSource:
		cases.Range = body.Source.Range()
		if _, err := parser.ParseExpr(cases.Expr); err != nil {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid case source expression",
				Detail:   err.Error(),
				Subject:  cases.Range.Ptr(),
			})
		}
	default:
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing case source",
			Detail:   "a cases block needs either a yaml file path or a source expression",
			Subject:  block.DefRange.Ptr(),
		})
	}

	decl.Cases = cases
	return decl, diags
}

func decodeFlags(ctx context.Context, decl *config.Declaration, ignore, bench hcl.Expression) hcl.Diagnostics {
	_, diags := decodeExpr(ctx, ignore, &decl.Ignore)
	_, d := decodeExpr(ctx, bench, &decl.Bench)
	return append(diags, d...)
}

func isFuncPath(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if !token.IsIdentifier(p) {
			return false
		}
	}
	return true
}
