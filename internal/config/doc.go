// Package config defines the format-agnostic model of datatest
// declarations, along with the Loader interface implemented by each
// declaration surface.
//
// Two surfaces exist: `//datatest:` directive comments on the functions
// themselves (package directive) and a sibling HCL file (package hcl). Both
// translate into the same Declaration values, so the matcher and the
// synthesizer never know where a test was declared. The `config.Model` is
// the single source of truth for everything downstream.
package config
