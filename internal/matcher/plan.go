// Package matcher pairs the parameters of an annotated function with the
// rules of its declaration and enforces the invariants the generated
// adapter depends on: every parameter is a simple named binding, every
// parameter has a rule, and exactly one bound rule is a pattern.
package matcher

import (
	"github.com/jcape/datatest/internal/annotation"
	"github.com/jcape/datatest/internal/config"
)

// Arg is one adapter argument.
type Arg struct {
	Name string
	// Type is the declared parameter type with one pointer level removed
	// when Ref is set. Ref parameters receive the address of the derived
	// value.
	Type string
	Ref  bool
	Rule *annotation.Rule
	// Index is the position of the parameter in the declaration, counting
	// a leading *testing.B.
	Index int
}

// Plan is the validated binding of a file-driven test.
type Plan struct {
	Func string
	Decl *config.Declaration
	// Args is in declaration order and excludes the *testing.B parameter.
	Args    []Arg
	Pattern int

	Bench        bool
	ReturnsError bool
	IgnoreFn     string
}

// Params returns the rule expressions in argument order.
func (p *Plan) Params() []string {
	params := make([]string, len(p.Args))
	for i, a := range p.Args {
		params[i] = a.Rule.Expr
	}
	return params
}

// CasePlan is the validated binding of a case-driven test.
type CasePlan struct {
	Func string
	Decl *config.Declaration
	// Type is the case type as declared, with one pointer level removed
	// when Ref is set.
	Type string
	Ref  bool

	Bench        bool
	ReturnsError bool
}

// Result collects the plans of one package, in declaration order.
type Result struct {
	Files []*Plan
	Cases []*CasePlan
}

// Len returns the number of plans.
func (r *Result) Len() int {
	return len(r.Files) + len(r.Cases)
}

// HasBench reports whether any plan is a benchmark.
func (r *Result) HasBench() bool {
	for _, p := range r.Files {
		if p.Bench {
			return true
		}
	}
	for _, p := range r.Cases {
		if p.Bench {
			return true
		}
	}
	return false
}

// HasTest reports whether any plan is a regular test.
func (r *Result) HasTest() bool {
	for _, p := range r.Files {
		if !p.Bench {
			return true
		}
	}
	for _, p := range r.Cases {
		if !p.Bench {
			return true
		}
	}
	return false
}
