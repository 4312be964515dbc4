package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	for _, name := range []string{"a.hcl", "sub/b.HCL", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(root, "a.hcl"), filepath.Join(root, "sub", "b.HCL")}, files)
}

func TestModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")

	_, ok, err := ModTime(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mt, ok, err := ModTime(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mt.IsZero())
}

func TestWriteFileAtomic_CreatesParents(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "deep", "nested", "file.bin")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestRemoveEmptyParents(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "keep"), nil, 0o644))

	RemoveEmptyParents(deep, root)

	assert.NoDirExists(t, filepath.Join(root, "a", "b"))
	assert.DirExists(t, filepath.Join(root, "a"))
	assert.DirExists(t, root)
}
