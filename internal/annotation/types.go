package annotation

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
)

// Kind distinguishes the two rule flavors.
type Kind int

const (
	Template Kind = iota // <arg> = "<template>"
	Pattern              // <arg> in "<regexp>"
)

func (k Kind) String() string {
	if k == Pattern {
		return "pattern"
	}
	return "template"
}

// Rule binds one function argument to an expression.
type Rule struct {
	Arg  string
	Kind Kind
	Expr string
	// IgnoreFn is the predicate path given with `if !<path>`. Only pattern
	// rules carry one.
	IgnoreFn string

	ArgRange  hcl.Range
	ExprRange hcl.Range
}

// RuleSet is one parsed file-rule annotation. Rules are keyed by argument
// name. The parser guarantees unique keys; it does not check that exactly one
// rule is a pattern, which depends on the signature the set is matched
// against.
type RuleSet struct {
	Root      string
	RootRange hcl.Range
	Rules     map[string]*Rule
}

// Names returns the argument names of the set in lexical order.
func (rs *RuleSet) Names() []string {
	names := make([]string, 0, len(rs.Rules))
	for name := range rs.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CaseSource is one parsed case-rule annotation. Exactly one of Path and
// Expr is set.
type CaseSource struct {
	// Path is the YAML file named by a string-literal annotation.
	Path string
	// Expr is a Go expression evaluating to []datatest.CaseDesc[T].
	Expr  string
	Range hcl.Range
}

// Source locates annotation text inside a file.
type Source struct {
	Filename string
	// Start is the position of the first byte of Text.
	Start hcl.Pos
	Text  string
}
