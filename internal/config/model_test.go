package config

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decl(fn, file string, at int) *Declaration {
	return &Declaration{
		Func:  fn,
		Range: hcl.Range{Filename: file, Start: hcl.Pos{Line: 1, Column: 1, Byte: at}},
	}
}

func TestMerge(t *testing.T) {
	fromSource := NewModel()
	require.Empty(t, fromSource.Add(decl("checkB", "b_test.go", 10)))
	require.Empty(t, fromSource.Add(decl("checkA", "a_test.go", 50)))

	fromHCL := NewModel()
	require.Empty(t, fromHCL.Add(decl("checkC", "datatest.hcl", 1)))
	require.Empty(t, fromHCL.Add(decl("checkA", "datatest.hcl", 90)))

	merged, diags := Merge(fromSource, nil, fromHCL)

	require.Len(t, diags, 1)
	assert.Equal(t, "Duplicate test declaration", diags[0].Summary)
	assert.Equal(t, "datatest.hcl", diags[0].Subject.Filename)
	assert.Contains(t, diags[0].Detail, "a_test.go")

	var names []string
	for _, d := range merged.Sorted() {
		names = append(names, d.Func)
	}
	assert.Equal(t, []string{"checkA", "checkB", "checkC"}, names)
	assert.Equal(t, "a_test.go", merged.Declarations["checkA"].Range.Filename)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "files", KindFiles.String())
	assert.Equal(t, "cases", KindCases.String())
}
