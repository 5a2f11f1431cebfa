// Package index builds and queries keyword indexes over result files.
//
// An Index is an ordered collection of record descriptors plus two
// derived lookup structures: per-name position sets and the distinct
// names in first-occurrence order. Build produces the global index by
// scanning a blob once; Block derives a non-owning sub-index covering
// one delimiter-bounded stanza. All lookups are pure in-memory
// operations.
package index

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrNotFound is returned when a keyword name is absent or an
// occurrence is out of range.
var ErrNotFound = errors.New("keyword not found")

// RangeError reports a position or index outside the valid range.
type RangeError struct {
	What  string
	Index int
	Size  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.What, e.Index, e.Size)
}

// Index maps keyword names and positions to record descriptors.
//
// The example file
//
//	SEQHDR MINISTEP PARAMS MINISTEP PARAMS MINISTEP PARAMS
//
// indexes as positions {SEQHDR: [0], MINISTEP: [1,3,5], PARAMS:
// [2,4,6]} and distinct names [SEQHDR, MINISTEP, PARAMS]. An Index is
// immutable once built.
type Index struct {
	records   []*Record
	positions map[string]*roaring.Bitmap
	distinct  []string
	owns      bool
}

// New builds an index over records. owns marks the global index, the
// single owner of the descriptors; block indexes pass false.
func New(records []*Record, owns bool) *Index {
	x := &Index{records: records, owns: owns}
	x.rebuild()
	return x
}

// rebuild derives positions and distinct from records in one linear
// pass. It must run again whenever records changes; nothing mutates
// records after construction, so in practice it runs exactly once.
func (x *Index) rebuild() {
	x.positions = make(map[string]*roaring.Bitmap)
	x.distinct = x.distinct[:0]
	for i, rec := range x.records {
		bm, ok := x.positions[rec.Name]
		if !ok {
			bm = roaring.New()
			x.positions[rec.Name] = bm
			x.distinct = append(x.distinct, rec.Name)
		}
		bm.Add(uint32(i))
	}
}

// Size returns the number of records in the index.
func (x *Index) Size() int {
	return len(x.records)
}

// Owns reports whether this index owns its record descriptors.
func (x *Index) Owns() bool {
	return x.owns
}

// Has reports whether the index contains at least one record named name.
func (x *Index) Has(name string) bool {
	_, ok := x.positions[name]
	return ok
}

// Count returns the number of records named name, 0 if absent.
func (x *Index) Count(name string) int {
	bm, ok := x.positions[name]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// DistinctCount returns the number of distinct keyword names.
func (x *Index) DistinctCount() int {
	return len(x.distinct)
}

// DistinctName returns the i-th distinct name in first-occurrence order.
func (x *Index) DistinctName(i int) (string, error) {
	if i < 0 || i >= len(x.distinct) {
		return "", &RangeError{What: "distinct name", Index: i, Size: len(x.distinct)}
	}
	return x.distinct[i], nil
}

// At returns the record at a position within this index.
func (x *Index) At(pos int) (*Record, error) {
	if pos < 0 || pos >= len(x.records) {
		return nil, &RangeError{What: "record", Index: pos, Size: len(x.records)}
	}
	return x.records[pos], nil
}

// PositionOf returns the position of the i-th occurrence of name, or
// false if name is absent or occurrence is out of range.
func (x *Index) PositionOf(name string, occurrence int) (int, bool) {
	bm, ok := x.positions[name]
	if !ok || occurrence < 0 || uint64(occurrence) >= bm.GetCardinality() {
		return 0, false
	}
	pos, err := bm.Select(uint32(occurrence))
	if err != nil {
		panic(fmt.Sprintf("index: position set for %q lost occurrence %d: %v", name, occurrence, err))
	}
	return int(pos), true
}

// Named returns the record of the i-th occurrence of name.
func (x *Index) Named(name string, occurrence int) (*Record, error) {
	pos, ok := x.PositionOf(name, occurrence)
	if !ok {
		if !x.Has(name) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s occurrence %d (have %d)", ErrNotFound, name, occurrence, x.Count(name))
	}
	return x.records[pos], nil
}

// OccurrenceOf returns the rank of the record at pos among the records
// sharing its name: the inverse of PositionOf.
//
// A valid position whose name is missing from the position sets is an
// index-maintenance bug, not a runtime condition, and panics.
func (x *Index) OccurrenceOf(pos int) (int, error) {
	if pos < 0 || pos >= len(x.records) {
		return 0, &RangeError{What: "record", Index: pos, Size: len(x.records)}
	}
	name := x.records[pos].Name
	bm, ok := x.positions[name]
	if !ok || !bm.Contains(uint32(pos)) {
		panic(fmt.Sprintf("index: record %q at position %d missing from its position set", name, pos))
	}
	return int(bm.Rank(uint32(pos))) - 1, nil
}
