// Package keyword implements the ECLIPSE keyword record codec.
//
// A result file is a flat sequence of records. Each record carries an
// 8-character name, an element type, an element count and the payload
// elements. Files come in two variants: unformatted (Fortran
// sequential binary, big-endian by convention) and formatted (text).
// The codec reads and writes single records at explicit offsets; it
// never interprets what a record means.
package keyword

import "fmt"

// Type identifies the element type of a record payload.
type Type uint8

const (
	// MESS is a bare message record with no payload elements.
	// It is the zero Type, matching the zero Value.
	MESS Type = iota
	// CHAR holds strings of at most 8 characters.
	CHAR
	// INTE holds 32-bit signed integers.
	INTE
	// REAL holds 32-bit floats.
	REAL
	// DOUB holds 64-bit floats.
	DOUB
	// LOGI holds booleans, stored as 32-bit integers on disk.
	LOGI
)

// String returns the four-character type mnemonic used on disk.
func (t Type) String() string {
	switch t {
	case CHAR:
		return "CHAR"
	case INTE:
		return "INTE"
	case REAL:
		return "REAL"
	case DOUB:
		return "DOUB"
	case LOGI:
		return "LOGI"
	case MESS:
		return "MESS"
	default:
		return "????"
	}
}

// elementSize returns the on-disk size of one element in the
// unformatted variant.
func (t Type) elementSize() int {
	switch t {
	case CHAR:
		return 8
	case INTE, REAL, LOGI:
		return 4
	case DOUB:
		return 8
	default:
		return 0
	}
}

// blockLen returns the maximum number of elements per Fortran data
// block in the unformatted variant.
func (t Type) blockLen() int {
	if t == CHAR {
		return 105
	}
	return 1000
}

// TypeFromMnemonic parses a four-character type mnemonic.
func TypeFromMnemonic(s string) (Type, error) {
	switch s {
	case "CHAR":
		return CHAR, nil
	case "INTE":
		return INTE, nil
	case "REAL":
		return REAL, nil
	case "DOUB":
		return DOUB, nil
	case "LOGI":
		return LOGI, nil
	case "MESS":
		return MESS, nil
	default:
		return 0, fmt.Errorf("unknown keyword type mnemonic %q", s)
	}
}

// Header is the metadata of one record: name, element type and element
// count. Names are stored space-stripped; on disk they occupy exactly
// eight characters.
type Header struct {
	Name  string
	Type  Type
	Count int
}

// MaxNameLen is the fixed on-disk width of a keyword name.
const MaxNameLen = 8

// Validate reports whether the header can be written back out.
func (h Header) Validate() error {
	if len(h.Name) > MaxNameLen {
		return fmt.Errorf("keyword name %q exceeds %d characters", h.Name, MaxNameLen)
	}
	if h.Count < 0 {
		return fmt.Errorf("keyword %s has negative element count %d", h.Name, h.Count)
	}
	if h.Type == MESS && h.Count != 0 {
		return fmt.Errorf("keyword %s is MESS but has element count %d", h.Name, h.Count)
	}
	return nil
}
