package annotation

import (
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

type ruleParser struct {
	src   Source
	toks  []lexeme
	pos   int
	diags hcl.Diagnostics
}

// errAbort unwinds the parser after the first syntax error; the diagnostic
// has already been recorded.
type errAbort struct{}

// ParseFiles parses a file-rule annotation:
//
//	"<root>", { <arg> in "<regexp>" [if !<predicate>], <arg> = "<template>", ... }
//
// The trailing comma after the last rule is optional.
func ParseFiles(src Source) (rs *RuleSet, diags hcl.Diagnostics) {
	toks, diags := lex(src)
	if diags.HasErrors() {
		return nil, diags
	}
	p := &ruleParser{src: src, toks: toks}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errAbort); !ok {
				panic(r)
			}
			rs, diags = nil, p.diags
		}
	}()

	rs = &RuleSet{Rules: make(map[string]*Rule)}
	root := p.expect(token.STRING, "a root directory string")
	rs.Root = p.unquote(root)
	rs.RootRange = p.rangeOf(root)
	p.expect(token.COMMA, "','")
	p.expect(token.LBRACE, "'{'")

	for p.peek().tok != token.RBRACE {
		rule := p.parseRule()
		if prev, dup := rs.Rules[rule.Arg]; dup {
			p.diags = append(p.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate argument mapping",
				Detail:   fmt.Sprintf("mapping for the argument `%s` is already defined at %s", rule.Arg, prev.ArgRange.Start),
				Subject:  rule.ArgRange.Ptr(),
			})
		} else {
			rs.Rules[rule.Arg] = rule
		}

		if p.peek().tok == token.COMMA {
			p.next()
			continue
		}
		if p.peek().tok != token.RBRACE {
			p.fail(p.peek(), "expected ',' or '}' after a rule")
		}
	}
	p.next()
	p.expect(token.EOF, "end of annotation")

	if p.diags.HasErrors() {
		return nil, p.diags
	}
	return rs, p.diags
}

func (p *ruleParser) parseRule() *Rule {
	name := p.expect(token.IDENT, "an argument name")
	rule := &Rule{Arg: name.lit, ArgRange: p.rangeOf(name)}

	op := p.next()
	switch {
	case op.tok == token.IDENT && op.lit == "in":
		rule.Kind = Pattern
	case op.tok == token.ASSIGN:
		rule.Kind = Template
	default:
		p.fail(op, fmt.Sprintf("expected `in` or `=` after `%s`", name.lit))
	}

	value := p.expect(token.STRING, "a string literal")
	rule.Expr = p.unquote(value)
	rule.ExprRange = p.rangeOf(value)

	if rule.Kind == Pattern {
		if _, err := regexp.Compile(rule.Expr); err != nil {
			p.diags = append(p.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid pattern",
				Detail:   err.Error(),
				Subject:  rule.ExprRange.Ptr(),
			})
		}
	}

	if p.peek().tok == token.IF {
		ifTok := p.next()
		if rule.Kind != Pattern {
			p.fail(ifTok, "`if !<predicate>` is only allowed after a pattern (`in`) rule")
		}
		p.expect(token.NOT, "'!'")
		rule.IgnoreFn = p.parsePath()
	}
	return rule
}

// parsePath reads `ident` or `pkg.ident`.
func (p *ruleParser) parsePath() string {
	parts := []string{p.expect(token.IDENT, "a predicate function").lit}
	for p.peek().tok == token.PERIOD {
		p.next()
		parts = append(parts, p.expect(token.IDENT, "an identifier").lit)
	}
	if len(parts) > 2 {
		p.fail(p.peek(), "predicate must be a function or a package-qualified function")
	}
	return strings.Join(parts, ".")
}

func (p *ruleParser) peek() lexeme {
	return p.toks[p.pos]
}

func (p *ruleParser) next() lexeme {
	t := p.toks[p.pos]
	if t.tok != token.EOF {
		p.pos++
	}
	return t
}

func (p *ruleParser) expect(tok token.Token, what string) lexeme {
	t := p.next()
	if t.tok != tok {
		p.fail(t, "expected "+what)
	}
	return t
}

func (p *ruleParser) fail(at lexeme, msg string) {
	found := at.lit
	if found == "" {
		found = at.tok.String()
	}
	if at.tok == token.EOF {
		found = "end of annotation"
	}
	p.diags = append(p.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Malformed annotation",
		Detail:   fmt.Sprintf("%s, found %s", msg, found),
		Subject:  p.rangeOf(at).Ptr(),
	})
	panic(errAbort{})
}

func (p *ruleParser) unquote(t lexeme) string {
	s, err := strconv.Unquote(t.lit)
	if err != nil {
		p.fail(t, "invalid string literal")
	}
	return s
}

func (p *ruleParser) rangeOf(t lexeme) hcl.Range {
	return p.src.rangeAt(t.offset, t.end)
}

// ParseCases parses a case-rule annotation: either a lone string literal,
// naming a YAML file for the default loader, or a Go expression that is
// syntax-checked and kept verbatim.
func ParseCases(src Source) (*CaseSource, hcl.Diagnostics) {
	text := strings.TrimSpace(src.Text)
	lead := strings.Index(src.Text, text)
	if text == "" {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Missing case source",
			Detail:   "expected a YAML file path string or an expression producing cases",
			Subject:  src.Range().Ptr(),
		}}
	}
	rng := src.rangeAt(lead, lead+len(text))

	toks, diags := lex(src)
	if diags.HasErrors() {
		return nil, diags
	}
	if len(toks) == 2 && toks[0].tok == token.STRING {
		path, err := strconv.Unquote(toks[0].lit)
		if err != nil {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Malformed annotation",
				Detail:   "invalid string literal",
				Subject:  rng.Ptr(),
			}}
		}
		return &CaseSource{Path: path, Range: rng}, nil
	}

	fset := token.NewFileSet()
	if _, err := parser.ParseExprFrom(fset, src.Filename, text, 0); err != nil {
		var out hcl.Diagnostics
		if list, ok := err.(scanner.ErrorList); ok {
			for _, e := range list {
				off := lead + e.Pos.Offset
				out = append(out, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid case source expression",
					Detail:   e.Msg,
					Subject:  src.rangeAt(off, off+1).Ptr(),
				})
			}
		}
		if len(out) == 0 {
			out = append(out, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid case source expression",
				Detail:   err.Error(),
				Subject:  rng.Ptr(),
			})
		}
		return nil, out
	}
	return &CaseSource{Expr: text, Range: rng}, nil
}
