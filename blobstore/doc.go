// Package blobstore provides the storage abstraction under resfile.
//
// A BlobStore opens result files as read-only, randomly addressable
// Blobs and creates WritableBlobs for rewriting them. Implementations
// must be safe for concurrent use; a Blob handed to one resfile.File is
// used from a single goroutine only.
//
// # Built-in implementations
//
//   - LocalStore: local filesystem with mmap support; gzip- and
//     lz4-compressed inputs are decompressed into memory on open.
//   - MemoryStore: in-memory store for tests.
//   - minio.Store: MinIO and S3-compatible object storage.
//   - s3.Store: Amazon S3 with range reads and managed uploads.
package blobstore
