package resfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maulingogri/resfile/blobstore"
	"github.com/maulingogri/resfile/keyword"
)

type fixtureRecord struct {
	hdr keyword.Header
	v   keyword.Value
}

// restartFixture is a small unified-restart-shaped file: two report
// steps delimited by SEQNUM.
func restartFixture() []fixtureRecord {
	return []fixtureRecord{
		{keyword.Header{Name: "SEQNUM", Type: keyword.INTE, Count: 1}, keyword.NewInts([]int32{1})},
		{keyword.Header{Name: "PRESSURE", Type: keyword.REAL, Count: 3}, keyword.NewReals([]float32{300, 310.5, 320.25})},
		{keyword.Header{Name: "SWAT", Type: keyword.REAL, Count: 3}, keyword.NewReals([]float32{0.1, 0.2, 0.3})},
		{keyword.Header{Name: "SEQNUM", Type: keyword.INTE, Count: 1}, keyword.NewInts([]int32{2})},
		{keyword.Header{Name: "PRESSURE", Type: keyword.REAL, Count: 3}, keyword.NewReals([]float32{301, 311.5, 321.25})},
		{keyword.Header{Name: "SWAT", Type: keyword.REAL, Count: 3}, keyword.NewReals([]float32{0.15, 0.25, 0.35})},
	}
}

func encodeFixture(t *testing.T, c keyword.Codec, records []fixtureRecord) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range records {
		require.NoError(t, c.Write(&buf, r.hdr, r.v))
	}
	return buf.Bytes()
}

func fixtureStore(t *testing.T, name string, records []fixtureRecord) *blobstore.MemoryStore {
	t.Helper()
	store := blobstore.NewMemoryStore()
	data := encodeFixture(t, keyword.ForFormat(keyword.FormatAuto, name, nil), records)
	require.NoError(t, store.Put(context.Background(), name, data))
	return store
}

// countingStore wraps a BlobStore and counts every ReadAt against the
// blobs it opens.
type countingStore struct {
	inner blobstore.BlobStore
	reads int
}

func (s *countingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	blob, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{inner: blob, reads: &s.reads}, nil
}

func (s *countingStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

type countingBlob struct {
	inner blobstore.Blob
	reads *int
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	*b.reads++
	return b.inner.ReadAt(ctx, p, off)
}

func (b *countingBlob) Close() error { return b.inner.Close() }
func (b *countingBlob) Size() int64  { return b.inner.Size() }

func TestOpenAndQuery(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t, "CASE.UNRST", restartFixture())

	f, err := Open(ctx, "CASE.UNRST", WithStore(store))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "CASE.UNRST", f.Name())
	assert.Equal(t, 6, f.Size())
	assert.True(t, f.Has("PRESSURE"))
	assert.False(t, f.Has("SGAS"))
	assert.Equal(t, 2, f.Count("SEQNUM"))
	assert.Equal(t, 3, f.DistinctCount())

	name, err := f.DistinctName(1)
	require.NoError(t, err)
	assert.Equal(t, "PRESSURE", name)

	rec, err := f.Named("SWAT", 1)
	require.NoError(t, err)
	assert.Equal(t, "SWAT", rec.Name)
	assert.Equal(t, keyword.REAL, rec.Type)

	occ, err := f.OccurrenceOf(5)
	require.NoError(t, err)
	assert.Equal(t, 1, occ)

	v, err := f.Get(ctx, "PRESSURE", 1)
	require.NoError(t, err)
	got, ok := v.Reals()
	require.True(t, ok)
	assert.Equal(t, []float32{301, 311.5, 321.25}, got)

	_, err = f.Get(ctx, "SGAS", 0)
	assert.True(t, IsNotFound(err))
	_, err = f.Get(ctx, "PRESSURE", 2)
	assert.True(t, IsNotFound(err))
}

func TestMaterializeReadsOnce(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{inner: fixtureStore(t, "CASE.UNRST", restartFixture())}

	f, err := Open(ctx, "CASE.UNRST", WithStore(store))
	require.NoError(t, err)
	defer f.Close()

	scanReads := store.reads
	require.Greater(t, scanReads, 0)

	first, err := f.Get(ctx, "PRESSURE", 0)
	require.NoError(t, err)
	afterFirst := store.reads
	require.Greater(t, afterFirst, scanReads)

	second, err := f.Get(ctx, "PRESSURE", 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, afterFirst, store.reads, "cached payload must not touch the blob")
}

func TestSelectBlock(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t, "CASE.UNRST", restartFixture())

	f, err := Open(ctx, "CASE.UNRST", WithStore(store))
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.SelectBlock("SEQNUM", 1))
	assert.Equal(t, 3, f.Size())
	assert.Equal(t, 1, f.Count("SEQNUM"))
	assert.Equal(t, 1, f.Count("PRESSURE"))

	v, err := f.Get(ctx, "SEQNUM", 0)
	require.NoError(t, err)
	steps, ok := v.Ints()
	require.True(t, ok)
	assert.Equal(t, []int32{2}, steps)

	// A miss leaves the active index untouched.
	assert.False(t, f.SelectBlock("SEQNUM", 2))
	assert.Equal(t, 3, f.Size())
	assert.False(t, f.SelectBlock("NOSUCH", 0))
	assert.Equal(t, 3, f.Size())

	f.SelectGlobal()
	assert.Equal(t, 6, f.Size())
}

func TestBlockSharesMaterializedPayloads(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{inner: fixtureStore(t, "CASE.UNRST", restartFixture())}

	f, err := Open(ctx, "CASE.UNRST", WithStore(store))
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.SelectBlock("SEQNUM", 1))
	blockView, err := f.Get(ctx, "PRESSURE", 0)
	require.NoError(t, err)
	reads := store.reads

	f.SelectGlobal()
	globalView, err := f.Get(ctx, "PRESSURE", 1)
	require.NoError(t, err)

	assert.Equal(t, blockView, globalView)
	assert.Equal(t, reads, store.reads, "block and global alias the same descriptor")
}

func TestWriteFromRoundTrip(t *testing.T) {
	ctx := context.Background()
	fixture := restartFixture()
	store := fixtureStore(t, "CASE.UNRST", fixture)

	f, err := Open(ctx, "CASE.UNRST", WithStore(store))
	require.NoError(t, err)
	defer f.Close()

	targets := []string{"COPY.UNRST", "COPY.FUNRST"} // same variant and cross-variant
	for _, target := range targets {
		require.NoError(t, f.WriteFrom(ctx, target, 0))

		g, err := Open(ctx, target, WithStore(store))
		require.NoError(t, err)

		require.Equal(t, len(fixture), g.Size())
		for pos, want := range fixture {
			rec, err := g.At(pos)
			require.NoError(t, err)
			assert.Equal(t, want.hdr, rec.Header())

			v, err := g.GetAt(ctx, pos)
			require.NoError(t, err)
			assert.Equal(t, want.v, v, "%s record %d", target, pos)
		}
		require.NoError(t, g.Close())
	}
}

func TestWriteFromOffsetAndBlock(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t, "CASE.UNRST", restartFixture())

	f, err := Open(ctx, "CASE.UNRST", WithStore(store))
	require.NoError(t, err)
	defer f.Close()

	// Offset skips records of the active index.
	require.NoError(t, f.WriteFrom(ctx, "TAIL.UNRST", 3))
	g, err := Open(ctx, "TAIL.UNRST", WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Size())
	assert.Equal(t, 1, g.Count("SEQNUM"))
	require.NoError(t, g.Close())

	// A selected block narrows what gets written.
	require.True(t, f.SelectBlock("SEQNUM", 0))
	require.NoError(t, f.WriteFrom(ctx, "STEP1.UNRST", 0))
	g, err = Open(ctx, "STEP1.UNRST", WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Size())
	v, err := g.Get(ctx, "SEQNUM", 0)
	require.NoError(t, err)
	steps, _ := v.Ints()
	assert.Equal(t, []int32{1}, steps)
	require.NoError(t, g.Close())

	// Out-of-range offsets are rejected; one-past-the-end is allowed.
	var rerr *RangeError
	require.ErrorAs(t, f.WriteFrom(ctx, "X.UNRST", 4), &rerr)
	require.NoError(t, f.WriteFrom(ctx, "EMPTY.UNRST", 3))
}

func TestOpenEmptyFile(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "EMPTY.UNRST", nil))

	f, err := Open(ctx, "EMPTY.UNRST", WithStore(store))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 0, f.Size())
	assert.Equal(t, 0, f.DistinctCount())
	assert.False(t, f.SelectBlock("SEQNUM", 0))
}

func TestOpenMalformed(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t, "CASE.UNRST", restartFixture())

	blob, err := store.Open(ctx, "CASE.UNRST")
	require.NoError(t, err)
	data := make([]byte, blob.Size()-5)
	_, err = blob.ReadAt(ctx, data, 0)
	require.NoError(t, err)
	require.NoError(t, blob.Close())
	require.NoError(t, store.Put(ctx, "BAD.UNRST", data))

	f, err := Open(ctx, "BAD.UNRST", WithStore(store))
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	require.Nil(t, f, "no partial handle on scan failure")

	_, err = Open(ctx, "MISSING.UNRST", WithStore(store))
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestClosedFile(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t, "CASE.UNRST", restartFixture())

	f, err := Open(ctx, "CASE.UNRST", WithStore(store))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "close is idempotent")

	assert.Equal(t, 0, f.Size())
	assert.False(t, f.Has("PRESSURE"))
	assert.False(t, f.SelectBlock("SEQNUM", 0))

	_, err = f.Get(ctx, "PRESSURE", 0)
	require.ErrorIs(t, err, ErrClosed)
	_, err = f.At(0)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, f.WriteFrom(ctx, "X.UNRST", 0), ErrClosed)
}

func TestOpenAll(t *testing.T) {
	ctx := context.Background()
	store := fixtureStore(t, "CASE1.UNRST", restartFixture())
	data := encodeFixture(t, keyword.NewBinary(nil), restartFixture()[:3])
	require.NoError(t, store.Put(ctx, "CASE2.UNRST", data))

	files, err := OpenAll(ctx, []string{"CASE1.UNRST", "CASE2.UNRST"}, WithStore(store))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 6, files[0].Size())
	assert.Equal(t, 3, files[1].Size())
	for _, f := range files {
		require.NoError(t, f.Close())
	}

	_, err = OpenAll(ctx, []string{"CASE1.UNRST", "MISSING.UNRST"}, WithStore(store))
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestOpenCompressedLocalFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	data := encodeFixture(t, keyword.NewBinary(nil), restartFixture())

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CASE.UNRST.gz"), gz.Bytes(), 0o644))

	f, err := Open(ctx, "CASE.UNRST.gz", WithStore(blobstore.NewLocalStore(dir)))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 6, f.Size())
	v, err := f.Get(ctx, "SWAT", 0)
	require.NoError(t, err)
	got, _ := v.Reals()
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}
