// Package blobstore abstracts where input snapshots are read from and where
// run outputs are written to.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads through read-only mmap
//   - MemoryStore: in-memory, for tests and dry runs
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// ReadAll and NewReader provide whole-blob and sequential access on top of
// any Blob.
package blobstore
