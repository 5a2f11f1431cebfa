package index

import "github.com/maulingogri/resfile/keyword"

// Record describes one keyword record in a result file: its header
// metadata, where its payload starts in the blob, and the lazily
// cached payload once it has been materialized.
//
// Records are owned by exactly one global index. Block indexes share
// the same *Record instances, so a payload materialized through a
// block is visible through the global index and vice versa.
type Record struct {
	// Name is the space-stripped keyword name. Not unique within a file.
	Name string
	// Type is the element type of the payload.
	Type keyword.Type
	// Count is the number of payload elements.
	Count int
	// HeaderOffset is the byte offset of the record header.
	HeaderOffset int64
	// PayloadOffset is the byte offset where the payload begins.
	PayloadOffset int64

	value  keyword.Value
	loaded bool
}

// Header returns the codec header of the record.
func (r *Record) Header() keyword.Header {
	return keyword.Header{Name: r.Name, Type: r.Type, Count: r.Count}
}

// Value returns the cached payload, if materialized.
func (r *Record) Value() (keyword.Value, bool) {
	return r.value, r.loaded
}

// SetValue caches a materialized payload on the record.
func (r *Record) SetValue(v keyword.Value) {
	r.value = v
	r.loaded = true
}
