// Package hcl implements config.Loader for the optional `datatest.hcl` file
// that sits next to a package's sources. It is responsible for parsing the
// file, translating its blocks into the format-agnostic model and binding
// attribute values into Go values through cty.
//
// A file declares one block per test function:
//
//	files "checkConvert" {
//	  root  = "testdata"
//	  bench = true
//
//	  arg "input" {
//	    pattern = "(.*)\\.in"
//	    unless  = "isSlow"
//	  }
//	  arg "output" {
//	    template = "$${1}.out"
//	  }
//	}
//
//	cases "checkCases" {
//	  yaml = "testdata/cases.yaml"
//	}
//
// Template references must be escaped as `$${1}` because `${...}` is HCL's
// own interpolation syntax.
package hcl
