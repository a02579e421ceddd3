package datatest

import "testing"

// FilesTestDesc describes one file-driven test to the harness. It is
// produced by the generator and never mutated afterwards.
type FilesTestDesc struct {
	// Name is the qualified name of the annotated function,
	// "<import path>.<func>".
	Name   string
	Ignore bool
	// Root is the directory scanned for test inputs, relative to the
	// package directory.
	Root string
	// Params holds one expression per adapter argument, in parameter
	// order. Params[Pattern] is the regular expression matched against
	// candidate files; every other entry is a template expanded with the
	// pattern's submatches.
	Params  []string
	Pattern int
	// IgnoreFn, when set, is consulted for every matched file; returning
	// true skips that instance.
	IgnoreFn func(path string) bool
	TestFn   FilesTestFn
}

// FilesTestFn holds the adapter of a file-driven test. Exactly one field is
// set.
type FilesTestFn struct {
	Test  func(t *testing.T, paths []string)
	Bench func(b *testing.B, paths []string)
}

// CaseTestDesc describes one case-driven test to the harness.
type CaseTestDesc struct {
	Name   string
	Ignore bool
	// Bench is set when the cases are bound to benchmark adapters.
	Bench bool
	// DescribeFn produces the cases of this test, each already bound to the
	// generated adapter. It panics when the case source is empty.
	DescribeFn func() []CaseTestCase
}

// CaseDesc is a single named case produced by a case source.
type CaseDesc[T any] struct {
	Case     T
	Name     string
	Location string
}

// CaseFn is a case bound to its adapter. Exactly one field is set.
type CaseFn struct {
	Test  func(t *testing.T)
	Bench func(b *testing.B)
}

// CaseTestCase is what DescribeFn returns: a case already wrapped in the
// adapter that runs it.
type CaseTestCase = CaseDesc[CaseFn]

// IsBench reports whether the descriptor carries a benchmark adapter.
func (d *FilesTestDesc) IsBench() bool {
	return d.TestFn.Bench != nil
}
