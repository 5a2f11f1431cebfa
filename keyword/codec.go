package keyword

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/maulingogri/resfile/blobstore"
)

// Codec reads and writes single records at explicit blob offsets.
//
// ReadHeader returns io.EOF when off sits exactly at the end of the
// blob; any other decoding failure is a *FormatError. All offsets are
// absolute byte positions within the blob.
type Codec interface {
	// ReadHeader decodes the record header at off and returns it
	// together with the offset of the record's payload.
	ReadHeader(ctx context.Context, blob blobstore.Blob, off int64) (Header, int64, error)

	// SkipPayload advances past the payload that starts at off and
	// returns the offset of the next record.
	SkipPayload(ctx context.Context, blob blobstore.Blob, hdr Header, off int64) (int64, error)

	// ReadPayload decodes the payload that starts at off.
	ReadPayload(ctx context.Context, blob blobstore.Blob, hdr Header, off int64) (Value, error)

	// Write encodes a complete record to w.
	Write(w io.Writer, hdr Header, v Value) error
}

// ForFormat returns the codec for a variant. FormatAuto resolves the
// variant from name. A nil order selects big-endian, the ECLIPSE
// native byte order.
func ForFormat(f Format, name string, order binary.ByteOrder) Codec {
	if f == FormatAuto {
		f = Detect(name)
	}
	if f == FormatFormatted {
		return NewFormatted()
	}
	return NewBinary(order)
}

// FormatError reports a record that could not be decoded: a malformed
// or truncated container.
type FormatError struct {
	Offset int64
	Msg    string
	cause  error
}

func (e *FormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("malformed record at offset %d: %s: %v", e.Offset, e.Msg, e.cause)
	}
	return fmt.Sprintf("malformed record at offset %d: %s", e.Offset, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.cause }

// formatErr is shorthand for the common construction sites.
func formatErr(off int64, msg string, cause error) error {
	return &FormatError{Offset: off, Msg: msg, cause: cause}
}

// readFull reads exactly len(p) bytes at off. A short read is reported
// as io.ErrUnexpectedEOF; a clean EOF (zero bytes at off) as io.EOF.
func readFull(ctx context.Context, blob blobstore.Blob, p []byte, off int64) error {
	n, err := blob.ReadAt(ctx, p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || (err == io.EOF && n > 0) {
		err = io.ErrUnexpectedEOF
	}
	return err
}
