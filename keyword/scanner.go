package keyword

import (
	"context"
	"io"

	"github.com/maulingogri/resfile/blobstore"
)

const scannerChunk = 4096

// scanner tokenizes a text-variant blob from a given offset while
// tracking the exact absolute position of the next unread byte. The
// position is what makes lazy materialization work for formatted
// files: the offset after a header is a stable payload address.
type scanner struct {
	ctx  context.Context
	blob blobstore.Blob
	base int64 // absolute offset of buf[0]
	buf  []byte
	i    int
	eof  bool
}

func newScanner(ctx context.Context, blob blobstore.Blob, off int64) *scanner {
	return &scanner{ctx: ctx, blob: blob, base: off}
}

// offset returns the absolute offset of the next unread byte.
func (s *scanner) offset() int64 {
	return s.base + int64(s.i)
}

func (s *scanner) fill() error {
	if s.i < len(s.buf) {
		return nil
	}
	if s.eof {
		return io.EOF
	}
	s.base += int64(len(s.buf))
	buf := make([]byte, scannerChunk)
	n, err := s.blob.ReadAt(s.ctx, buf, s.base)
	s.buf = buf[:n]
	s.i = 0
	if err == io.EOF {
		s.eof = true
		if n == 0 {
			return io.EOF
		}
		return nil
	}
	return err
}

func (s *scanner) peek() (byte, error) {
	if err := s.fill(); err != nil {
		return 0, err
	}
	return s.buf[s.i], nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// skipSpace advances past whitespace. io.EOF means the blob ended
// before any non-space byte.
func (s *scanner) skipSpace() error {
	for {
		b, err := s.peek()
		if err != nil {
			return err
		}
		if !isSpace(b) {
			return nil
		}
		s.i++
	}
}

// token returns the next whitespace-delimited token.
func (s *scanner) token() (string, error) {
	if err := s.skipSpace(); err != nil {
		return "", err
	}
	// The token may straddle a buffer refill; collect bytes one at a
	// time instead of slicing buf.
	var tok []byte
	for {
		b, err := s.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isSpace(b) {
			break
		}
		tok = append(tok, b)
		s.i++
	}
	return string(tok), nil
}

// quoted returns the contents of the next single-quoted token, spaces
// preserved.
func (s *scanner) quoted() (string, error) {
	if err := s.skipSpace(); err != nil {
		return "", err
	}
	b, err := s.peek()
	if err != nil {
		return "", err
	}
	if b != '\'' {
		return "", formatErr(s.offset(), "expected quoted string", nil)
	}
	s.i++

	var tok []byte
	for {
		b, err := s.peek()
		if err != nil {
			return "", err
		}
		s.i++
		if b == '\'' {
			return string(tok), nil
		}
		tok = append(tok, b)
	}
}
