package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "blob", []byte("payload")))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(7), blob.Size())

	p := make([]byte, 4)
	n, err := blob.ReadAt(ctx, p, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "load", string(p))

	n, err = blob.ReadAt(ctx, p, 5)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
	_, err = blob.ReadAt(ctx, p, 7)
	assert.ErrorIs(t, err, io.EOF)

	_, err = store.Open(ctx, "absent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreOpenCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "blob", []byte("aaaa")))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	// Overwriting the stored blob must not affect an open handle.
	require.NoError(t, store.Put(ctx, "blob", []byte("bbbb")))
	p := make([]byte, 4)
	_, err = blob.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(p))
}

func TestMemoryStoreCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	w, err := store.Create(ctx, "blob")
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)

	_, err = store.Open(ctx, "blob")
	require.ErrorIs(t, err, ErrNotFound, "contents appear only on Close")

	require.NoError(t, w.Close())
	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), blob.Size())
	require.NoError(t, blob.Close())
}

func TestMemoryStoreAbort(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	w, err := store.Create(ctx, "blob")
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	Discard(w)

	_, err = store.Open(ctx, "blob")
	require.ErrorIs(t, err, ErrNotFound)
}
