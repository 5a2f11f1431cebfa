package index

import "slices"

// Block derives a non-owning sub-index from the global index: the
// contiguous run of records starting at the given occurrence of the
// delimiter name and ending just before its next occurrence, or at
// end-of-file. The block holds the delimiter record exactly once, at
// its start.
//
// Blocks are always derived from the global index, never from another
// block, so partial views cannot compound. The returned bool is false
// when occurrence is out of range; that is an ordinary miss, not an
// error.
func Block(global *Index, name string, occurrence int) (*Index, bool) {
	start, ok := global.PositionOf(name, occurrence)
	if !ok {
		return nil, false
	}

	end := global.Size()
	if next, ok := global.PositionOf(name, occurrence+1); ok {
		end = next
	}

	// Descriptors are shared by reference; only the slice is copied.
	// The block rebuilds its lookup tables over block-local positions.
	return New(slices.Clone(global.records[start:end]), false), true
}
