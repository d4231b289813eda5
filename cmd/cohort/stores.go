package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/cohort/blobstore"
	"github.com/hupe1980/cohort/blobstore/minio"
	"github.com/hupe1980/cohort/blobstore/s3"
	"github.com/hupe1980/cohort/config"
	"github.com/hupe1980/cohort/resource"
	"github.com/hupe1980/cohort/source"
	"github.com/hupe1980/cohort/source/postgres"
)

// openStore builds the blob store described by sc.
func openStore(ctx context.Context, sc config.StoreConfig) (blobstore.Store, error) {
	switch sc.Type {
	case config.StoreLocal:
		return blobstore.NewLocalStore(sc.Path), nil
	case config.StoreS3:
		store, err := s3.New(ctx, sc.S3.Bucket, s3.Options{
			Prefix:       sc.S3.Prefix,
			Region:       sc.S3.Region,
			Endpoint:     sc.S3.Endpoint,
			UsePathStyle: sc.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreMinIO:
		store, err := minio.New(sc.MinIO.Bucket, minio.Options{
			Endpoint:  sc.MinIO.Endpoint,
			AccessKey: os.Getenv(sc.MinIO.AccessKeyEnv),
			SecretKey: os.Getenv(sc.MinIO.SecretKeyEnv),
			Secure:    sc.MinIO.Secure,
			Region:    sc.MinIO.Region,
			Prefix:    sc.MinIO.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store type %q", sc.Type)
	}
}

// openReader returns the dataset reader of the input section and a function
// releasing its resources.
func openReader(ctx context.Context, cfg *config.Config, rc *resource.Controller) (source.Reader, func(), error) {
	if cfg.Input.Type == config.StorePostgres {
		dsn := os.Getenv(cfg.Input.Postgres.DSNEnv)
		if dsn == "" {
			return nil, nil, fmt.Errorf("environment variable %s is not set", cfg.Input.Postgres.DSNEnv)
		}
		opts := postgres.DefaultOptions()
		opts.Tables = cfg.Input.Postgres.Tables
		src, err := postgres.Open(ctx, dsn, opts)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	}

	store, err := openStore(ctx, cfg.Input.StoreConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	loader := source.NewLoader(store)
	loader.Files = cfg.Input.Files
	loader.Controller = rc
	return loader, func() {}, nil
}
