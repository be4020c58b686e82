package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "kisaan", "session.json"), zerolog.Nop())
	require.NoError(t, err)
	return fs
}

func TestFileStore_MissingFileReadsEmpty(t *testing.T) {
	fs := newFileStore(t)

	v, ok, err := fs.Get(context.Background(), "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestFileStore_SetWritesAllEntries(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)

	require.NoError(t, fs.Set(ctx, map[string]string{"a": "1", "b": "2"}))

	// A second store on the same path sees both entries.
	other, err := NewFileStore(fs.Path(), zerolog.Nop())
	require.NoError(t, err)
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, ok, err := other.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	info, err := os.Stat(fs.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
}

func TestFileStore_SetKeepsOtherEntries(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)

	require.NoError(t, fs.Set(ctx, map[string]string{"keep": "x"}))
	require.NoError(t, fs.Set(ctx, map[string]string{"a": "1"}))

	v, ok, err := fs.Get(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)

	require.NoError(t, fs.Delete(ctx, "a", "b"))
	require.NoError(t, fs.Set(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, fs.Delete(ctx, "a", "b"))
	require.NoError(t, fs.Delete(ctx, "a", "b"))

	_, ok, err := fs.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_UnreadableFileIsAnError(t *testing.T) {
	fs := newFileStore(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{broken"), 0o600))

	_, _, err := fs.Get(context.Background(), "a")
	assert.Error(t, err)
}

func TestFileStore_WatchReportsChanges(t *testing.T) {
	fs := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() { done <- fs.Watch(ctx, func() { changes.Add(1) }) }()

	// The watcher registers asynchronously; keep writing until it reports.
	require.Eventually(t, func() bool {
		_ = fs.Set(context.Background(), map[string]string{"auth_token": time.Now().String()})
		return changes.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
