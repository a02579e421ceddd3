package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/fsutil"
	"golang.org/x/sync/errgroup"
)

// Run processes every configured directory. Directories are handled
// concurrently; their results are reported in directory order once all of
// them are done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Starting datatest generation.")

	dirs, err := a.resolveDirs()
	if err != nil {
		return err
	}

	results := make([]*dirResult, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.processDir(ctxlog.With(gctx, "dir", dir), dir)
			if err != nil {
				return fmt.Errorf("processing %s: %w", dir, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return a.report(results)
}

// resolveDirs expands "/..." suffixes and removes duplicates.
func (a *App) resolveDirs() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, dir := range a.config.Dirs {
		root, recursive := strings.CutSuffix(filepath.ToSlash(dir), "/...")
		if !recursive {
			add(dir)
			continue
		}
		if root == "" {
			root = "."
		}
		found, err := fsutil.FindPackageDirs(filepath.FromSlash(root))
		if err != nil {
			return nil, fmt.Errorf("failed to find packages under %s: %w", root, err)
		}
		for _, d := range found {
			add(d)
		}
	}
	sort.Strings(dirs)
	a.logger.Debug("Resolved package directories.", "count", len(dirs))
	return dirs, nil
}

func (a *App) report(results []*dirResult) error {
	printer := newDiagPrinter(a.errW)
	var errs, stale int

	for _, res := range results {
		if len(res.diags) > 0 {
			if err := printer.Print(res.diags); err != nil {
				return fmt.Errorf("failed to print diagnostics: %w", err)
			}
		}
		for _, d := range res.diags {
			if d.Severity == hcl.DiagError {
				errs++
			}
		}
		for _, c := range res.changes {
			switch c.action {
			case actionWritten:
				a.logger.Info("Generated file written.", "file", c.path)
			case actionRemoved:
				a.logger.Info("Stale generated file removed.", "file", c.path)
			case actionStale:
				stale++
				a.logger.Warn("Generated file is out of date.", "file", c.path)
				fmt.Fprint(a.outW, c.diff)
			}
		}
	}

	a.logger.Info("Datatest generation finished.", "dirs", len(results), "errors", errs, "stale", stale)

	// Keep-going still fails the run; it only changes what gets written.
	if errs > 0 {
		return &DiagnosticsError{Errors: errs}
	}
	if stale > 0 {
		return ErrStale
	}
	return nil
}
