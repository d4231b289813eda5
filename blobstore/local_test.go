package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	data := []byte("hello world, this is a test blob for cohort")
	require.NoError(t, store.Put(ctx, "in/Customers.csv", data))
	require.NoError(t, store.Put(ctx, "in/Products.csv", []byte("x")))
	require.NoError(t, store.Put(ctx, "out/elbow.csv", []byte{}))

	blob, err := store.Open(ctx, "in/Customers.csv")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	big := make([]byte, 10)
	n, err = blob.ReadAt(ctx, big, int64(len(data)-3))
	assert.Equal(t, 3, n)
	assert.Equal(t, io.EOF, err)

	rc, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "this", string(part))

	seq, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, seq)

	all, err := ReadAll(ctx, store, "in/Customers.csv")
	require.NoError(t, err)
	assert.Equal(t, data, all)

	empty, err := ReadAll(ctx, store, "out/elbow.csv")
	require.NoError(t, err)
	assert.Empty(t, empty)

	// Overwrite
	require.NoError(t, store.Put(ctx, "in/Products.csv", []byte("yz")))
	products, err := ReadAll(ctx, store, "in/Products.csv")
	require.NoError(t, err)
	assert.Equal(t, "yz", string(products))

	names, err := store.List(ctx, "in/")
	require.NoError(t, err)
	assert.Equal(t, []string{"in/Customers.csv", "in/Products.csv"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 3)

	_, err = store.Open(ctx, "missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	testStore(t, NewLocalStore(dir))

	_, err := os.Stat(filepath.Join(dir, "in", "Customers.csv"))
	require.NoError(t, err)

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "in"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "a", data))
	data[0] = 'x'

	got, err := ReadAll(ctx, store, "a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLocalStore_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewLocalStore(t.TempDir())
	assert.ErrorIs(t, store.Put(ctx, "a", nil), context.Canceled)
	_, err := store.Open(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
