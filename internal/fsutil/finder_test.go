package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindPackageDirs(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"a.go",
		"sub/b_test.go",
		"sub/testdata/c.go",
		"_skip/d.go",
		".hidden/e.go",
		"vendor/x/f.go",
		"empty/readme.md",
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("package x\n"), 0o644))
	}

	dirs, err := FindPackageDirs(root)
	require.NoError(t, err)
	require.Equal(t, []string{root, filepath.Join(root, "sub")}, dirs)
}

func TestListFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.go", "a.go", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.go"), 0o755))

	files, err := ListFilesByExtension(root, ".go")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(root, "a.go"), filepath.Join(root, "b.go")}, files)

	require.Panics(t, func() { _, _ = ListFilesByExtension(root, "") })
}
