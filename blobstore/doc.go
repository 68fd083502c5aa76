// Package blobstore abstracts where database snapshots are kept.
//
// Implementations:
//
//   - MemoryStore: in-process, for tests
//   - LocalStore: a directory on the local filesystem
//   - s3.Store: Amazon S3 (package blobstore/s3)
//   - minio.Store: MinIO and other S3-compatible services (package blobstore/minio)
//
// Blobs are immutable once written: Put and Create replace a blob as a
// whole, readers never observe a partially written blob.
package blobstore
