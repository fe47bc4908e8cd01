package pathwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesIntermediateDirsAndContent(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	err := w.Write(".git/objects/ab/cdef0123", strings.NewReader("hello"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, ".git/objects/ab/cdef0123"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestExistsAfterWrite(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	assert.False(t, w.Exists(".git/HEAD"))
	require.NoError(t, w.WriteBytes(".git/HEAD", []byte("ref: refs/heads/main\n")))
	assert.True(t, w.Exists(".git/HEAD"))
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	require.NoError(t, w.WriteBytes("a/b", []byte("first")))
	require.NoError(t, w.WriteBytes("a/b", []byte("second, and longer")))

	data, err := w.Read("a/b")
	require.NoError(t, err)
	assert.Equal(t, "second, and longer", string(data))
}

func TestWriteToleratesPreexistingIntermediateDirs(t *testing.T) {
	root := t.TempDir()
	w := New(root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	require.NoError(t, w.WriteBytes("a/b/c", []byte("x")))
}
