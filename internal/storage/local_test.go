package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "u1/docs/a.txt", Key("u1", "docs/a.txt"))
	assert.Equal(t, "u1/a.txt", Key("u1", "/a.txt/"))
	assert.Equal(t, "u1", Key("u1", ""))
}

func TestLocalSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	key := Key("owner-1", "docs/report.txt")
	err = local.Save(ctx, key, strings.NewReader("hello"))
	require.NoError(t, err)

	exists, err := local.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := local.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	err = local.Delete(ctx, key)
	require.NoError(t, err)

	exists, err = local.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalSaveReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	local, err := NewLocal(root)
	require.NoError(t, err)

	key := Key("owner-1", "a.txt")
	require.NoError(t, local.Save(ctx, key, strings.NewReader("one")))
	require.NoError(t, local.Save(ctx, key, strings.NewReader("two")))

	rc, err := local.Open(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "two", string(data))

	// No staging leftovers after a completed save.
	entries, err := os.ReadDir(filepath.Join(root, "owner-1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name())
}

func TestLocalOpenMissing(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = local.Open(context.Background(), Key("owner-1", "nope.txt"))
	assert.ErrorIs(t, err, ErrNotExist)

	err = local.Delete(context.Background(), Key("owner-1", "nope.txt"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalCanceledContextAbortsSave(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = local.Save(ctx, Key("owner-1", "a.txt"), strings.NewReader("data"))
	require.Error(t, err)

	exists, err := local.Exists(context.Background(), Key("owner-1", "a.txt"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalRejectsKeyEscapingRoot(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = local.Save(context.Background(), "../outside.txt", strings.NewReader("x"))
	require.Error(t, err)
}
