package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/jcape/datatest/internal/config"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/gosrc"
)

// DefaultFilename is the name of the declaration file looked up in each
// package directory.
const DefaultFilename = "datatest.hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	filename string
}

// NewLoader creates a new HCL declaration loader reading filename from each
// package directory. An empty filename selects DefaultFilename.
func NewLoader(filename string) *Loader {
	if filename == "" {
		filename = DefaultFilename
	}
	return &Loader{filename: filename}
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "files", LabelNames: []string{"func"}},
		{Type: "cases", LabelNames: []string{"func"}},
	},
}

// Load reads the declaration file of pkg's directory. A missing file is not
// an error. Every package of a directory shares one file: blocks naming a
// function of a sibling package are left to that package, and file-level
// problems are reported by the primary package only.
func (l *Loader) Load(ctx context.Context, pkg *gosrc.Package) (*config.Model, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()
	path := filepath.Join(pkg.Dir, l.filename)

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("No HCL declaration file.", "file", path)
		return model, nil
	}
	if err != nil {
		return model, l.fileLevel(pkg, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read declaration file",
			Detail:   err.Error(),
			Subject:  &hcl.Range{Filename: path},
		}})
	}
	logger.Debug("Loading HCL declarations.", "file", path, "package", pkg.Name)

	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return model, l.fileLevel(pkg, diags)
	}

	content, contentDiags := file.Body.Content(rootSchema)
	diags = l.fileLevel(pkg, append(diags, contentDiags...))

	for _, block := range content.Blocks {
		fn := block.Labels[0]
		if _, ok := pkg.Funcs[fn]; !ok {
			if !pkg.HasFunc(fn) && pkg.Primary() {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unknown test function",
					Detail:   fmt.Sprintf("no top-level function named %s is declared in %s", fn, pkg.Dir),
					Subject:  block.LabelRanges[0].Ptr(),
				})
			}
			continue
		}

		var decl *config.Declaration
		var declDiags hcl.Diagnostics
		switch block.Type {
		case "files":
			decl, declDiags = translateFiles(ctx, block)
		case "cases":
			decl, declDiags = translateCases(ctx, block)
		}
		diags = append(diags, declDiags...)
		if decl == nil {
			continue
		}
		diags = append(diags, model.Add(decl)...)
	}

	logger.Debug("HCL loading complete.", "file", path, "declarations", len(model.Declarations))
	return model, diags
}

func (l *Loader) fileLevel(pkg *gosrc.Package, diags hcl.Diagnostics) hcl.Diagnostics {
	if pkg.Primary() {
		return diags
	}
	return nil
}
