// Package minio provides a blobstore.Store backed by the MinIO client.
//
// It works with MinIO and other S3-compatible services (Ceph, Garage,
// SeaweedFS) without the AWS SDK.
//
//	store, err := minio.New("snapshots", minio.Options{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
//	    SecretKey: os.Getenv("MINIO_SECRET_KEY"),
//	})
package minio
