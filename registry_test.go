package datatest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_AddAndFreeze(t *testing.T) {
	reg := NewRegistry()
	files := &FilesTestDesc{Name: "example.com/pkg.checkFiles", Root: "testdata"}
	cases := &CaseTestDesc{Name: "example.com/pkg.checkCases"}

	reg.AddFiles(files)
	reg.AddCases(cases)

	require.Equal(t, 2, reg.Len())
	require.False(t, reg.Frozen())

	require.Equal(t, []*FilesTestDesc{files}, reg.Files())
	require.True(t, reg.Frozen(), "reading descriptors must end the registration phase")
	require.Equal(t, []*CaseTestDesc{cases}, reg.Cases())
}

func TestRegistry_DuplicateNamePanics(t *testing.T) {
	reg := NewRegistry()
	reg.AddFiles(&FilesTestDesc{Name: "example.com/pkg.check"})

	require.PanicsWithValue(t,
		"datatest: test with name 'example.com/pkg.check' already registered",
		func() { reg.AddCases(&CaseTestDesc{Name: "example.com/pkg.check"}) },
	)
}

func TestRegistry_AddAfterFreezePanics(t *testing.T) {
	reg := NewRegistry()
	reg.Freeze()
	reg.Freeze()

	require.Panics(t, func() {
		reg.AddFiles(&FilesTestDesc{Name: "example.com/pkg.late"})
	})
	require.Zero(t, reg.Len())
}
