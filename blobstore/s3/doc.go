// Package s3 provides an S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.Options{
//	    Prefix: "snapshots/2025-01/",
//	    Region: "eu-central-1",
//	})
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checksummed single-request writes for small outputs
//   - Multipart uploads for large outputs
//   - Automatic pagination for listing
package s3
