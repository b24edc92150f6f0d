package fsys

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hubastard/forge/engine/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOverride(t *testing.T) {
	dir := t.TempDir()
	p, err := Resolve("reshape", dir)
	require.NoError(t, err)

	assert.Equal(t, dir, p.Data)
	assert.Equal(t, filepath.Join(dir, "cache", "shaders"), p.ShaderCache())
	assert.Equal(t, filepath.Join(dir, "logs"), p.Logs())
	assert.Equal(t, filepath.Join(dir, "config"), p.Config())

	require.NoError(t, p.Ensure())
	for _, d := range []string{p.Cache(), p.ShaderCache(), p.Config(), p.Logs()} {
		assert.DirExists(t, d)
	}
}

func TestResolveXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG layout only")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)
	p, err := Resolve("reshape", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "reshape"), p.Data)
}

func TestResolveEmptyName(t *testing.T) {
	_, err := Resolve("", "")
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.shader"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrFileNotFound))
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.bin")
	require.NoError(t, WriteFile(path, []byte{1, 2, 3}))
	assert.True(t, Exists(path))

	b, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	require.NoError(t, WriteFile(path, []byte{4}))
	b, err = ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, b)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}
