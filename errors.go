package resfile

import (
	"errors"

	"github.com/maulingogri/resfile/index"
	"github.com/maulingogri/resfile/keyword"
)

// ErrNotFound is returned when a queried keyword name is absent from
// the active index, or the requested occurrence is out of range.
var ErrNotFound = index.ErrNotFound

// ErrClosed is returned when a File is used after Close.
var ErrClosed = errors.New("resfile: file is closed")

// RangeError reports a position or index outside the valid range.
//
// It aliases the index package's error type so that callers only need
// to import resfile.
type RangeError = index.RangeError

// FormatError reports a record that could not be decoded: a malformed
// or truncated result file. Open fails with a FormatError when the
// initial scan hits one; no partial handle is returned.
type FormatError = keyword.FormatError

// IsNotFound reports whether err is a not-found failure. Block
// selection misses are reported as a plain false, never through this.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
