package config

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/annotation"
)

// Kind is the usage pattern of a declared test.
type Kind int

const (
	KindFiles Kind = iota // rules bind arguments to files on disk
	KindCases             // a case source produces named cases
)

func (k Kind) String() string {
	if k == KindCases {
		return "cases"
	}
	return "files"
}

// Declaration is the format-agnostic representation of one annotated test
// function.
type Declaration struct {
	Func string
	Kind Kind
	// Rules is set for KindFiles, Cases for KindCases.
	Rules *annotation.RuleSet
	Cases *annotation.CaseSource

	// Ignore marks a test skipped by default.
	Ignore bool
	// Bench marks a benchmark-style test whose first parameter is the
	// *testing.B controller.
	Bench bool

	// Range is the declaring directive or block.
	Range hcl.Range
}

// Model is the set of declarations of one package, keyed by function name.
type Model struct {
	Declarations map[string]*Declaration
}

// NewModel creates an empty Model.
func NewModel() *Model {
	return &Model{Declarations: make(map[string]*Declaration)}
}

// Add records d, reporting a diagnostic when the function already has a
// declaration.
func (m *Model) Add(d *Declaration) hcl.Diagnostics {
	if prev, exists := m.Declarations[d.Func]; exists {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Duplicate test declaration",
			Detail:   fmt.Sprintf("function %s is already declared as a datatest at %s", d.Func, prev.Range),
			Subject:  d.Range.Ptr(),
		}}
	}
	m.Declarations[d.Func] = d
	return nil
}

// Sorted returns the declarations ordered by source location.
func (m *Model) Sorted() []*Declaration {
	out := make([]*Declaration, 0, len(m.Declarations))
	for _, d := range m.Declarations {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Range, out[j].Range
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Start.Byte != b.Start.Byte {
			return a.Start.Byte < b.Start.Byte
		}
		return out[i].Func < out[j].Func
	})
	return out
}

// Merge combines models from several loaders. A function declared by more
// than one model is a diagnostic; the first declaration wins.
func Merge(models ...*Model) (*Model, hcl.Diagnostics) {
	merged := NewModel()
	var diags hcl.Diagnostics
	for _, m := range models {
		if m == nil {
			continue
		}
		for _, d := range m.Sorted() {
			diags = append(diags, merged.Add(d)...)
		}
	}
	return merged, diags
}
