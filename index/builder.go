package index

import (
	"context"
	"errors"
	"io"

	"github.com/maulingogri/resfile/blobstore"
	"github.com/maulingogri/resfile/keyword"
)

// Build scans blob from start to end and produces the global index.
//
// Only headers are read; payloads are skipped and materialized later
// on demand. A clean EOF at a record boundary ends the scan; a header
// that cannot be decoded mid-stream fails the whole build, since a
// partial index cannot be made consistent. An empty blob yields a
// valid index with zero records — callers that require at least one
// record must check Size themselves.
func Build(ctx context.Context, blob blobstore.Blob, codec keyword.Codec) (*Index, error) {
	var records []*Record

	off := int64(0)
	for {
		hdr, payloadOff, err := codec.ReadHeader(ctx, blob, off)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		end, err := codec.SkipPayload(ctx, blob, hdr, payloadOff)
		if err != nil {
			return nil, err
		}

		records = append(records, &Record{
			Name:          hdr.Name,
			Type:          hdr.Type,
			Count:         hdr.Count,
			HeaderOffset:  off,
			PayloadOffset: payloadOff,
		})
		off = end
	}

	return New(records, true), nil
}
