package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/little-lemon/internal/internaltypes"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, internaltypes.ErrNotFound)

	require.NoError(t, kv.Put(ctx, "k", []byte("one")))
	require.NoError(t, kv.Put(ctx, "k", []byte("two")))
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "two", string(v))

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Delete(ctx, "never-written"))
}

func TestMemKV(t *testing.T) {
	kv := NewMemKV()
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestMemKV_CopiesValues(t *testing.T) {
	kv := NewMemKV()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, kv.Put(ctx, "k", buf))
	buf[0] = 'z'
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(v))
}

func TestLevelKV(t *testing.T) {
	kv, err := OpenLevelDB(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestLevelKV_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	kv, err := OpenLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, "k", []byte("kept")))
	require.NoError(t, kv.Close())

	kv, err = OpenLevelDB(dir)
	require.NoError(t, err)
	defer kv.Close()
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "kept", string(v))
}

func TestOpenLevelDB_EmptyPath(t *testing.T) {
	_, err := OpenLevelDB("  ")
	require.Error(t, err)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	require.Equal(t, BackendLevelDB, b)

	b, err = ParseBackend(" Postgres ")
	require.NoError(t, err)
	require.Equal(t, BackendPostgres, b)

	_, err = ParseBackend("redis")
	require.Error(t, err)
}
