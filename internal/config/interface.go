package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/gosrc"
)

// Loader is the interface for a declaration surface.
type Loader interface {
	// Load reads the declarations that apply to pkg and translates them
	// into the format-agnostic model. Problems are reported as diagnostics;
	// a partially populated model is still returned so that independent
	// declarations can be reported on together.
	Load(ctx context.Context, pkg *gosrc.Package) (*Model, hcl.Diagnostics)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, pkg *gosrc.Package) (*Model, hcl.Diagnostics)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, pkg *gosrc.Package) (*Model, hcl.Diagnostics) {
	return f(ctx, pkg)
}
