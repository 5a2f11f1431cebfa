package resfile

import (
	"encoding/binary"

	"github.com/maulingogri/resfile/blobstore"
	"github.com/maulingogri/resfile/keyword"
)

type options struct {
	store  blobstore.BlobStore
	format keyword.Format
	order  binary.ByteOrder
	logger *Logger
}

// Option configures Open behavior.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		store:  blobstore.NewLocalStore(""),
		format: keyword.FormatAuto,
		order:  binary.BigEndian,
		logger: NoopLogger(),
	}
}

// WithStore selects the blob store the file is read from and targets
// are written to. The default is the local filesystem, with names
// resolved relative to the working directory.
func WithStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		if store != nil {
			o.store = store
		}
	}
}

// WithFormat overrides the formatted/unformatted detection that is
// otherwise derived from the file name.
func WithFormat(f keyword.Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithByteOrder sets the byte order of unformatted files. ECLIPSE
// files are big-endian; files produced by byte-swapping tools may need
// binary.LittleEndian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.order = order
		}
	}
}

// WithLogger attaches a structured logger. The default discards all
// output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
