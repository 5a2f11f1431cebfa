package resfile

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/maulingogri/resfile/blobstore"
	"github.com/maulingogri/resfile/index"
	"github.com/maulingogri/resfile/keyword"
)

// File is an indexed handle to one result file.
//
// Open scans the file once, recording the name, type, count and byte
// offset of every keyword record without reading payloads. Queries run
// against the active index: initially the global index covering the
// whole file, or a delimiter-bounded block after SelectBlock. Payloads
// are read and cached on first access.
//
// A File is not safe for concurrent use. Callers that need parallelism
// open one File per goroutine; see OpenAll.
type File struct {
	name   string
	store  blobstore.BlobStore
	blob   blobstore.Blob
	codec  keyword.Codec
	order  binary.ByteOrder
	logger *Logger

	global *index.Index
	active *index.Index
	blocks []*index.Index
	closed bool
}

// Open opens and indexes the named result file.
//
// The formatted/unformatted variant is detected from the file name
// unless overridden with WithFormat. A scan failure aborts the whole
// open; no partial handle is ever returned. A file with zero records
// opens successfully with Size() == 0.
func Open(ctx context.Context, name string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.WithFile(name)

	codec := keyword.ForFormat(o.format, name, o.order)

	blob, err := o.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resfile: failed to open %s: %w", name, err)
	}

	global, err := index.Build(ctx, blob, codec)
	if err != nil {
		blob.Close()
		return nil, fmt.Errorf("resfile: failed to index %s: %w", name, err)
	}

	logger.Debug("indexed file",
		"records", global.Size(),
		"distinct", global.DistinctCount(),
	)

	return &File{
		name:   name,
		store:  o.store,
		blob:   blob,
		codec:  codec,
		order:  o.order,
		logger: logger,
		global: global,
		active: global,
	}, nil
}

// OpenAll opens several result files concurrently, one independent
// handle per file. On any failure every already-opened handle is
// closed and the first error is returned.
func OpenAll(ctx context.Context, names []string, opts ...Option) ([]*File, error) {
	files := make([]*File, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			f, err := Open(ctx, name, opts...)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, f := range files {
			if f != nil {
				f.Close()
			}
		}
		return nil, err
	}
	return files, nil
}

// Name returns the name the file was opened under.
func (f *File) Name() string {
	return f.name
}

// Size returns the number of records in the active index.
func (f *File) Size() int {
	if f.closed {
		return 0
	}
	return f.active.Size()
}

// Has reports whether the active index contains the keyword.
func (f *File) Has(name string) bool {
	if f.closed {
		return false
	}
	return f.active.Has(name)
}

// Count returns the number of occurrences of the keyword in the
// active index, 0 if absent.
func (f *File) Count(name string) int {
	if f.closed {
		return 0
	}
	return f.active.Count(name)
}

// DistinctCount returns the number of distinct keyword names in the
// active index.
func (f *File) DistinctCount() int {
	if f.closed {
		return 0
	}
	return f.active.DistinctCount()
}

// DistinctName returns the i-th distinct keyword name, in order of
// first occurrence within the active index.
func (f *File) DistinctName(i int) (string, error) {
	if f.closed {
		return "", ErrClosed
	}
	return f.active.DistinctName(i)
}

// At returns the record descriptor at a position in the active index.
func (f *File) At(pos int) (*index.Record, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.active.At(pos)
}

// Named returns the record descriptor of the i-th occurrence of the
// keyword in the active index.
func (f *File) Named(name string, occurrence int) (*index.Record, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.active.Named(name, occurrence)
}

// OccurrenceOf returns the rank of the record at pos among same-named
// records of the active index.
func (f *File) OccurrenceOf(pos int) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	return f.active.OccurrenceOf(pos)
}

// SelectBlock derives a block from the global index, bounded by the
// given occurrence of the delimiter keyword and its next occurrence,
// and makes it the active index. It returns false, leaving the active
// index unchanged, when the occurrence does not exist; callers may
// retry with a different occurrence.
//
// Blocks are always derived from the global index, never from the
// currently active block.
func (f *File) SelectBlock(name string, occurrence int) bool {
	if f.closed {
		return false
	}
	blk, ok := index.Block(f.global, name, occurrence)
	if !ok {
		return false
	}
	f.blocks = append(f.blocks, blk)
	f.active = blk
	f.logger.Debug("selected block",
		"keyword", name,
		"occurrence", occurrence,
		"records", blk.Size(),
	)
	return true
}

// SelectGlobal makes the global index active again.
func (f *File) SelectGlobal() {
	if f.closed {
		return
	}
	f.active = f.global
}

// Materialize returns the record's payload, reading and caching it on
// first access. This is the only operation besides the initial scan
// that touches the blob.
func (f *File) Materialize(ctx context.Context, rec *index.Record) (keyword.Value, error) {
	if f.closed {
		return keyword.Value{}, ErrClosed
	}
	if rec == nil {
		return keyword.Value{}, errors.New("resfile: nil record")
	}
	if v, ok := rec.Value(); ok {
		return v, nil
	}

	v, err := f.codec.ReadPayload(ctx, f.blob, rec.Header(), rec.PayloadOffset)
	if err != nil {
		f.logger.Error("failed to materialize keyword",
			"keyword", rec.Name,
			"offset", rec.PayloadOffset,
			"error", err,
		)
		return keyword.Value{}, fmt.Errorf("resfile: failed to read payload of %s: %w", rec.Name, err)
	}
	rec.SetValue(v)

	f.logger.Debug("materialized keyword",
		"keyword", rec.Name,
		"elements", rec.Count,
	)
	return v, nil
}

// Get returns the payload of the i-th occurrence of the keyword in
// the active index.
func (f *File) Get(ctx context.Context, name string, occurrence int) (keyword.Value, error) {
	rec, err := f.Named(name, occurrence)
	if err != nil {
		return keyword.Value{}, err
	}
	return f.Materialize(ctx, rec)
}

// GetAt returns the payload of the record at a position in the active
// index.
func (f *File) GetAt(ctx context.Context, pos int) (keyword.Value, error) {
	rec, err := f.At(pos)
	if err != nil {
		return keyword.Value{}, err
	}
	return f.Materialize(ctx, rec)
}

// WriteFrom writes every record of the active index from offset
// (0-based, inclusive) onward to a new blob named target, in index
// order. The target's variant is detected from its name, so an
// unformatted file can be rewritten as a formatted one and back.
// Payloads not yet materialized are read from the source as needed.
func (f *File) WriteFrom(ctx context.Context, target string, offset int) error {
	if f.closed {
		return ErrClosed
	}
	if offset < 0 || offset > f.active.Size() {
		return &RangeError{What: "write offset", Index: offset, Size: f.active.Size() + 1}
	}

	codec := keyword.ForFormat(keyword.FormatAuto, target, f.order)

	w, err := f.store.Create(ctx, target)
	if err != nil {
		return fmt.Errorf("resfile: failed to create %s: %w", target, err)
	}
	bw := bufio.NewWriter(w)

	written := 0
	for pos := offset; pos < f.active.Size(); pos++ {
		rec, err := f.active.At(pos)
		if err != nil {
			blobstore.Discard(w)
			return err
		}
		v, err := f.Materialize(ctx, rec)
		if err != nil {
			blobstore.Discard(w)
			return err
		}
		if err := codec.Write(bw, rec.Header(), v); err != nil {
			blobstore.Discard(w)
			return fmt.Errorf("resfile: failed to write keyword %s to %s: %w", rec.Name, target, err)
		}
		written++
	}

	if err := bw.Flush(); err != nil {
		blobstore.Discard(w)
		return fmt.Errorf("resfile: failed to write %s: %w", target, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("resfile: failed to write %s: %w", target, err)
	}

	f.logger.Debug("wrote records",
		"target", target,
		"offset", offset,
		"records", written,
	)
	return nil
}

// Close releases the blob, the derived block indexes and the global
// index. The handle must not be used afterwards; operations on a
// closed File return ErrClosed.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	err := f.blob.Close()

	// Release order mirrors ownership: views first, then the owner.
	f.blocks = nil
	f.active = nil
	f.global = nil
	f.blob = nil

	if err != nil {
		return fmt.Errorf("resfile: failed to close %s: %w", f.name, err)
	}
	return nil
}
