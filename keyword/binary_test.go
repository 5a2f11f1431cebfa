package keyword

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maulingogri/resfile/blobstore"
)

func blobFrom(t *testing.T, data []byte) blobstore.Blob {
	t.Helper()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "fixture", data))
	blob, err := store.Open(context.Background(), "fixture")
	require.NoError(t, err)
	t.Cleanup(func() { blob.Close() })
	return blob
}

func encodeRecord(t *testing.T, c Codec, hdr Header, v Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf, hdr, v))
	return buf.Bytes()
}

func TestBinaryRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hdr  Header
		v    Value
	}{
		{
			name: "chars",
			hdr:  Header{Name: "WGNAMES", Type: CHAR, Count: 3},
			v:    NewChars([]string{"OP1", "WI-2", ""}),
		},
		{
			name: "ints",
			hdr:  Header{Name: "INTEHEAD", Type: INTE, Count: 4},
			v:    NewInts([]int32{-1, 0, 42, 1<<31 - 1}),
		},
		{
			name: "reals",
			hdr:  Header{Name: "PRESSURE", Type: REAL, Count: 3},
			v:    NewReals([]float32{1.5, -273.15, 3.14159}),
		},
		{
			name: "doubles",
			hdr:  Header{Name: "DOUBHEAD", Type: DOUB, Count: 2},
			v:    NewDoubles([]float64{86400.0, 1e-12}),
		},
		{
			name: "logicals",
			hdr:  Header{Name: "LOGIHEAD", Type: LOGI, Count: 3},
			v:    NewLogicals([]bool{true, false, true}),
		},
		{
			name: "message",
			hdr:  Header{Name: "ENDSOL", Type: MESS, Count: 0},
			v:    NewMessage(),
		},
	}

	orders := map[string]binary.ByteOrder{
		"big":    binary.BigEndian,
		"little": binary.LittleEndian,
	}

	for oname, order := range orders {
		for _, tt := range tests {
			t.Run(oname+"/"+tt.name, func(t *testing.T) {
				ctx := context.Background()
				c := NewBinary(order)
				blob := blobFrom(t, encodeRecord(t, c, tt.hdr, tt.v))

				hdr, payloadOff, err := c.ReadHeader(ctx, blob, 0)
				require.NoError(t, err)
				require.Equal(t, tt.hdr, hdr)

				end, err := c.SkipPayload(ctx, blob, hdr, payloadOff)
				require.NoError(t, err)
				require.Equal(t, blob.Size(), end)

				got, err := c.ReadPayload(ctx, blob, hdr, payloadOff)
				require.NoError(t, err)
				require.Equal(t, tt.v, got)

				// The record ends exactly at EOF.
				_, _, err = c.ReadHeader(ctx, blob, end)
				require.ErrorIs(t, err, io.EOF)
			})
		}
	}
}

func TestBinaryMultiBlockPayload(t *testing.T) {
	ctx := context.Background()
	c := NewBinary(binary.BigEndian)

	// 2500 elements span three 1000-element Fortran blocks.
	vs := make([]int32, 2500)
	for i := range vs {
		vs[i] = int32(i * 3)
	}
	hdr := Header{Name: "PARAMS", Type: INTE, Count: len(vs)}
	blob := blobFrom(t, encodeRecord(t, c, hdr, NewInts(vs)))

	// 24-byte header, payload data plus 3 pairs of block markers.
	require.Equal(t, int64(24+2500*4+3*8), blob.Size())

	got, err := c.ReadPayload(ctx, blob, hdr, 24)
	require.NoError(t, err)
	gotInts, ok := got.Ints()
	require.True(t, ok)
	require.Equal(t, vs, gotInts)
}

func TestBinaryCharBlocking(t *testing.T) {
	ctx := context.Background()
	c := NewBinary(binary.BigEndian)

	// 106 CHAR elements: one full 105-element block plus one more.
	vs := make([]string, 106)
	for i := range vs {
		vs[i] = "W1"
	}
	hdr := Header{Name: "WGNAMES", Type: CHAR, Count: len(vs)}
	blob := blobFrom(t, encodeRecord(t, c, hdr, NewChars(vs)))

	require.Equal(t, int64(24+106*8+2*8), blob.Size())

	got, err := c.ReadPayload(ctx, blob, hdr, 24)
	require.NoError(t, err)
	require.Equal(t, NewChars(vs), got)
}

func TestBinaryTruncatedHeader(t *testing.T) {
	ctx := context.Background()
	c := NewBinary(binary.BigEndian)
	full := encodeRecord(t, c,
		Header{Name: "SEQNUM", Type: INTE, Count: 1}, NewInts([]int32{7}))

	blob := blobFrom(t, full[:10])
	_, _, err := c.ReadHeader(ctx, blob, 0)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, int64(0), ferr.Offset)
}

func TestBinaryTruncatedPayload(t *testing.T) {
	ctx := context.Background()
	c := NewBinary(binary.BigEndian)
	full := encodeRecord(t, c,
		Header{Name: "PRESSURE", Type: REAL, Count: 4}, NewReals([]float32{1, 2, 3, 4}))

	blob := blobFrom(t, full[:len(full)-6])
	hdr, payloadOff, err := c.ReadHeader(ctx, blob, 0)
	require.NoError(t, err)

	_, err = c.SkipPayload(ctx, blob, hdr, payloadOff)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
}

func TestBinaryBadRecordMarker(t *testing.T) {
	ctx := context.Background()
	c := NewBinary(binary.BigEndian)
	full := encodeRecord(t, c,
		Header{Name: "SEQNUM", Type: INTE, Count: 1}, NewInts([]int32{7}))

	full[3] = 99 // corrupt the leading header marker
	blob := blobFrom(t, full)

	_, _, err := c.ReadHeader(ctx, blob, 0)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
}

func TestBinaryWriteValidation(t *testing.T) {
	c := NewBinary(binary.BigEndian)
	var buf bytes.Buffer

	err := c.Write(&buf, Header{Name: "TOOLONGNAME", Type: INTE, Count: 0}, NewInts(nil))
	require.Error(t, err)

	err = c.Write(&buf, Header{Name: "SEQNUM", Type: INTE, Count: 2}, NewInts([]int32{1}))
	require.Error(t, err)

	err = c.Write(&buf, Header{Name: "SEQNUM", Type: INTE, Count: 1}, NewReals([]float32{1}))
	require.Error(t, err)
}
