// Package resfile indexes and reads ECLIPSE result files.
//
// A result file is a flat sequence of named, typed records
// ("keywords"). Opening a file scans it once, building an index of
// every record's name, type, element count and byte offset — payloads
// stay on disk until requested, then are cached on first read.
//
// # Quick start
//
//	ctx := context.Background()
//	f, err := resfile.Open(ctx, "CASE.UNRST")
//	if err != nil { ... }
//	defer f.Close()
//
//	for i := 0; i < f.DistinctCount(); i++ {
//	    name, _ := f.DistinctName(i)
//	    fmt.Printf("%-8s x %d\n", name, f.Count(name))
//	}
//
//	v, err := f.Get(ctx, "PRESSURE", 0) // materializes one payload
//
// # Blocks
//
// Unified files concatenate stanzas delimited by a repeating keyword
// (SEQNUM in unified restart files, SEQHDR in unified summary files).
// SelectBlock narrows the active index to one stanza:
//
//	if f.SelectBlock("SEQNUM", 2) {
//	    v, _ := f.Get(ctx, "PRESSURE", 0) // PRESSURE of that step
//	}
//	f.SelectGlobal()
//
// # Storage
//
// Files are read through the blobstore abstraction: local filesystem
// (mmap, with transparent gzip/lz4 input decompression), MinIO, or
// Amazon S3 with ranged reads — indexing a remote file transfers only
// the headers.
//
// A File is not safe for concurrent use; open one handle per
// goroutine (OpenAll does this for whole sets of files).
package resfile
