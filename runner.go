package datatest

import (
	"flag"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"testing"
)

var runIgnored = flag.Bool("datatest.ignored", false, "run datatest tests marked with //datatest:ignore")

// Instance is one runnable instance of a file-driven test: the relative
// path of the file that matched the pattern and the adapter arguments
// derived from it.
type Instance struct {
	Name  string
	Paths []string
}

// Instances walks desc.Root and returns one Instance per file whose
// slash-separated path, relative to the root, matches the pattern. Template
// parameters are expanded with the pattern's submatches and joined to the
// root.
func Instances(desc *FilesTestDesc) ([]Instance, error) {
	if desc.Pattern < 0 || desc.Pattern >= len(desc.Params) {
		return nil, fmt.Errorf("%s: pattern index %d out of range", desc.Name, desc.Pattern)
	}
	re, err := regexp.Compile(desc.Params[desc.Pattern])
	if err != nil {
		return nil, fmt.Errorf("%s: invalid pattern: %w", desc.Name, err)
	}

	var found []Instance
	err = filepath.WalkDir(desc.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(desc.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		match := re.FindStringSubmatchIndex(rel)
		if match == nil {
			return nil
		}
		paths := make([]string, len(desc.Params))
		for i, param := range desc.Params {
			if i == desc.Pattern {
				paths[i] = p
				continue
			}
			expanded := re.ExpandString(nil, param, rel, match)
			paths[i] = filepath.Join(desc.Root, filepath.FromSlash(string(expanded)))
		}
		found = append(found, Instance{Name: rel, Paths: paths})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to scan %s: %w", desc.Name, desc.Root, err)
	}
	return found, nil
}

// Run freezes reg and runs every registered test as a subtest of t.
// Benchmark descriptors are left to RunBenchmarks.
func Run(t *testing.T, reg *Registry) {
	t.Helper()
	for _, desc := range reg.Files() {
		if desc.TestFn.Test == nil {
			continue
		}
		t.Run(displayName(desc.Name), func(t *testing.T) {
			skipIgnored(t, desc.Ignore)
			runFiles(t, desc)
		})
	}
	for _, desc := range reg.Cases() {
		if desc.Bench {
			continue
		}
		t.Run(displayName(desc.Name), func(t *testing.T) {
			skipIgnored(t, desc.Ignore)
			for _, c := range desc.DescribeFn() {
				t.Run(c.Name, func(t *testing.T) {
					t.Logf("case defined at %s", c.Location)
					c.Case.Test(t)
				})
			}
		})
	}
}

// RunBenchmarks freezes reg and runs every registered benchmark as a
// sub-benchmark of b.
func RunBenchmarks(b *testing.B, reg *Registry) {
	b.Helper()
	for _, desc := range reg.Files() {
		if desc.TestFn.Bench == nil {
			continue
		}
		b.Run(displayName(desc.Name), func(b *testing.B) {
			skipIgnored(b, desc.Ignore)
			instances, err := Instances(desc)
			if err != nil {
				b.Fatal(err)
			}
			for _, inst := range instances {
				if desc.IgnoreFn != nil && desc.IgnoreFn(inst.Paths[desc.Pattern]) {
					continue
				}
				b.Run(inst.Name, func(b *testing.B) {
					desc.TestFn.Bench(b, inst.Paths)
				})
			}
		})
	}
	for _, desc := range reg.Cases() {
		if !desc.Bench {
			continue
		}
		b.Run(displayName(desc.Name), func(b *testing.B) {
			// Skip before describing: an ignored source may well be empty.
			skipIgnored(b, desc.Ignore)
			for _, c := range desc.DescribeFn() {
				b.Run(c.Name, c.Case.Bench)
			}
		})
	}
}

func runFiles(t *testing.T, desc *FilesTestDesc) {
	instances, err := Instances(desc)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) == 0 {
		t.Fatalf("no files under %s match %q", desc.Root, desc.Params[desc.Pattern])
	}
	for _, inst := range instances {
		t.Run(inst.Name, func(t *testing.T) {
			if desc.IgnoreFn != nil && desc.IgnoreFn(inst.Paths[desc.Pattern]) {
				t.Skip("ignored by predicate")
			}
			desc.TestFn.Test(t, inst.Paths)
		})
	}
}

func skipIgnored(tb testing.TB, ignore bool) {
	if ignore && !*runIgnored {
		tb.Skip("ignored; run with -datatest.ignored")
	}
}

// displayName trims the import path from a qualified name, so that
// "github.com/acme/pkg.checkParse" runs as "pkg.checkParse".
func displayName(name string) string {
	return path.Base(name)
}
