package shader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "basic.shader")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(path, []byte(basicSource), 0o644))

	w, err := Watch(nil, path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(basicSource+"\n"), 0o644))

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	select {
	case got := <-w.Changes():
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basic.shader")
	require.NoError(t, os.WriteFile(path, []byte(basicSource), 0o644))

	w, err := Watch(nil, path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "closing twice is harmless")

	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("changes channel not closed")
	}
}

func TestWatcherPoll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basic.shader")
	require.NoError(t, os.WriteFile(path, []byte(basicSource), 0o644))
	w, err := Watch(nil, path)
	require.NoError(t, err)

	_, changed, closed := w.Poll()
	assert.False(t, changed)
	assert.False(t, closed)

	require.NoError(t, os.WriteFile(path, []byte(basicSource+"\n"), 0o644))
	assert.Eventually(t, func() bool {
		_, changed, _ := w.Poll()
		return changed
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Close())
	assert.Eventually(t, func() bool {
		_, _, closed := w.Poll()
		return closed
	}, 5*time.Second, 10*time.Millisecond)

	path, changed, closed = w.Poll()
	assert.Empty(t, path)
	assert.False(t, changed, "a stopped watcher reports no change")
	assert.True(t, closed)
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(nil, filepath.Join(t.TempDir(), "nope", "basic.shader"))
	assert.Error(t, err)
}
