package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipe01/tagcheck/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherWatchFile(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	for _, name := range []string{"a.xml", "b.xml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<a></a>\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(other, "c.xml"), []byte("<c></c>\n"), 0644))

	w, err := NewWatcher(workspace.New(dir, nil))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WatchFile(filepath.Join(dir, "a.xml")))
	require.NoError(t, w.WatchFile(filepath.Join(dir, "b.xml")))
	assert.Len(t, w.watchingDirs, 1, "files in one directory share a watch")

	require.NoError(t, w.WatchFile(filepath.Join(other, "c.xml")))
	assert.Len(t, w.watchingDirs, 2)
	assert.Len(t, w.watchingFiles, 3)

	assert.True(t, w.isWatching(filepath.Join(dir, "a.xml")))
	assert.True(t, w.isWatching(filepath.Join(other, "c.xml")))
	assert.False(t, w.isWatching(filepath.Join(dir, "unrelated.xml")))
}
