package keyword

import (
	"path/filepath"
	"strings"
)

// Format selects the container variant of a result file.
type Format uint8

const (
	// FormatAuto resolves the variant from the file name.
	FormatAuto Format = iota
	// FormatUnformatted is the Fortran sequential binary variant.
	FormatUnformatted
	// FormatFormatted is the text variant.
	FormatFormatted
)

// String returns a short name for the format.
func (f Format) String() string {
	switch f {
	case FormatUnformatted:
		return "unformatted"
	case FormatFormatted:
		return "formatted"
	default:
		return "auto"
	}
}

// Detect resolves the variant from an ECLIPSE file name.
//
// The naming convention marks formatted files with an extension whose
// first letter is 'F' (.FUNRST, .FSMSPEC, .F0001, ...) or 'A'
// (formatted summary data, .A0001). Everything else, including files
// without an extension, is unformatted. Compression suffixes are
// ignored, so BASE.FUNRST.gz detects the same as BASE.FUNRST.
func Detect(name string) Format {
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".lz4")

	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return FormatUnformatted
	}
	if ext[0] == 'F' || ext[0] == 'A' {
		return FormatFormatted
	}
	return FormatUnformatted
}
