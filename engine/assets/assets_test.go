package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/fsys"
)

func TestFindSearchesInOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "a.shader"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(first, "b.shader"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(second, "b.shader"), nil, 0o644))

	s := SearchPath{first, second}
	path, err := s.Find("a.shader")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "a.shader"), path)

	path, err = s.Find("b.shader")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "b.shader"), path, "earlier directories win")

	abs := filepath.Join(second, "a.shader")
	path, err = SearchPath{}.Find(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, path)
}

func TestFindMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := SearchPath{dir}.Find("nope.shader")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrFileNotFound)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Log, filepath.Join(dir, "nope.shader"))

	_, err = SearchPath{dir}.Find("")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestShadersSearchPath(t *testing.T) {
	s := Shaders(fsys.Paths{AppName: "forge", Exec: "/opt/forge"})
	assert.Equal(t, SearchPath{filepath.Join("assets", "shaders"), filepath.Join("/opt/forge", "resources", "shaders")}, s)

	assert.Len(t, Shaders(fsys.Paths{}), 1)
}
