// Package datatest is the runtime half of the datatest generator. It defines
// the descriptors that generated code fills in, the Registry those
// descriptors are collected into, and a small harness that turns a Registry
// into ordinary `go test` subtests and benchmarks.
//
// Test functions are never called by the harness directly. The generator
// (cmd/datatestgen) emits, for every annotated function, an adapter with one
// of two fixed calling conventions:
//
//	func(t *testing.T, paths []string)   // file-driven tests
//	func(t *testing.T, c Case)           // case-driven tests
//
// (and their *testing.B counterparts for benchmarks). The adapter converts
// the opaque inputs into the concrete parameter types with Derive and reports
// a returned error with AssertResult.
//
// A typical package wires the generator with:
//
//	//go:generate go run github.com/jcape/datatest/cmd/datatestgen
//
//	//datatest:files "testdata", { input in `(.*)\.in`, output = "${1}.out" }
//	func checkConvert(input string, output []byte) error { ... }
package datatest
