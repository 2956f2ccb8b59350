package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFileExist(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	ok, err := CheckFileExist(path)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckFileExist(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.TXT", "notes.md", "sub/c.txt"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
	single := filepath.Join(dir, "notes.md")

	files, err := CollectFiles([]string{dir, single, filepath.Join(dir, "b.txt")}, []string{".txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.TXT"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.txt"),
		single,
	}, files)

	all, err := CollectFiles([]string{dir}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = CollectFiles([]string{filepath.Join(dir, "missing")}, nil)
	assert.Error(t, err)
}
