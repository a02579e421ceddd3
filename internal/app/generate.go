package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/config"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/gosrc"
	"github.com/jcape/datatest/internal/matcher"
	"github.com/jcape/datatest/internal/synth"
	"github.com/pmezard/go-difflib/difflib"
)

type action int

const (
	actionWritten action = iota
	actionRemoved
	actionStale
)

type change struct {
	path   string
	action action
	diff   string
}

// dirResult is everything one directory produced, kept until reporting.
type dirResult struct {
	diags   hcl.Diagnostics
	changes []change
}

func (r *dirResult) add(c *change) {
	if c != nil {
		r.changes = append(r.changes, *c)
	}
}

// processDir generates one file per package of dir that declares data
// tests, and removes generated files no package claims anymore. Problems
// with the user's code are diagnostics; the error is for I/O failures.
func (a *App) processDir(ctx context.Context, dir string) (*dirResult, error) {
	logger := ctxlog.FromContext(ctx)
	res := &dirResult{}

	pkgs, diags := gosrc.Load(ctx, dir, a.config.Output)
	res.diags = diags
	if diags.HasErrors() {
		logger.Warn("Package directory has errors, skipping.")
		return res, nil
	}

	claimed := make(map[string]bool)
	for _, pkg := range pkgs {
		name := a.config.OutputFor(pkg)
		target := filepath.Join(dir, name)

		src, declared, diags := a.generatePackage(ctx, pkg, target)
		res.diags = append(res.diags, diags...)
		if declared {
			// A package with errors keeps its previous file.
			claimed[name] = true
		}
		if src == nil {
			continue
		}

		c, err := a.sync(ctx, target, src)
		if err != nil {
			return nil, err
		}
		res.add(c)
	}

	for _, name := range a.outputNames() {
		if claimed[name] {
			continue
		}
		c, err := a.removeStale(ctx, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		res.add(c)
	}
	return res, nil
}

// generatePackage runs every loader over pkg and renders the result.
// declared reports whether pkg asked for generated code at all.
func (a *App) generatePackage(ctx context.Context, pkg *gosrc.Package, target string) (src []byte, declared bool, diags hcl.Diagnostics) {
	ctx = ctxlog.With(ctx, "package", pkg.Name)
	logger := ctxlog.FromContext(ctx)

	models := make([]*config.Model, 0, len(a.loaders))
	for _, loader := range a.loaders {
		model, loadDiags := loader.Load(ctx, pkg)
		diags = append(diags, loadDiags...)
		models = append(models, model)
	}
	merged, mergeDiags := config.Merge(models...)
	diags = append(diags, mergeDiags...)

	if len(merged.Declarations) == 0 {
		return nil, diags.HasErrors(), diags
	}

	res, matchDiags := matcher.Match(ctx, pkg, merged)
	diags = append(diags, matchDiags...)
	if diags.HasErrors() && !a.config.KeepGoing {
		logger.Warn("Declarations have errors, no code generated.")
		return nil, true, diags
	}
	if res.Len() == 0 {
		return nil, true, diags
	}

	src, genDiags := synth.Generate(ctx, pkg, res, synth.Options{
		Register: a.config.Register,
		Entry:    a.config.Entry,
		Filename: target,
	})
	return src, true, append(diags, genDiags...)
}

// sync writes src to target unless it is already there. In check mode it
// only reports the difference.
func (a *App) sync(ctx context.Context, target string, src []byte) (*change, error) {
	logger := ctxlog.FromContext(ctx)

	old, err := os.ReadFile(target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	if bytes.Equal(old, src) {
		logger.Debug("Generated file is up to date.", "file", target)
		return nil, nil
	}

	if a.config.Check {
		diff, err := unifiedDiff(target, old, src)
		if err != nil {
			return nil, err
		}
		return &change{path: target, action: actionStale, diff: diff}, nil
	}

	if err := os.WriteFile(target, src, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", target, err)
	}
	return &change{path: target, action: actionWritten}, nil
}

// removeStale deletes a file this tool generated earlier. Files it did not
// generate are left alone.
func (a *App) removeStale(ctx context.Context, path string) (*change, error) {
	old, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !isGeneratedByUs(path, old) {
		ctxlog.FromContext(ctx).Debug("Leaving file that was not generated by datatestgen.", "file", path)
		return nil, nil
	}

	if a.config.Check {
		diff, err := unifiedDiff(path, old, nil)
		if err != nil {
			return nil, err
		}
		return &change{path: path, action: actionStale, diff: diff}, nil
	}

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return &change{path: path, action: actionRemoved}, nil
}

// outputNames are the file names a directory's generated files can have.
func (a *App) outputNames() []string {
	return []string{a.config.Output, a.config.externalOutput()}
}

func isGeneratedByUs(path string, src []byte) bool {
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.ImportsOnly|parser.ParseComments)
	if err != nil || !ast.IsGenerated(file) {
		return false
	}
	for _, imp := range file.Imports {
		if p, err := strconv.Unquote(imp.Path.Value); err == nil && p == synth.RuntimePath {
			return true
		}
	}
	return false
}

func unifiedDiff(path string, old, src []byte) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(src)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return diff, nil
}
