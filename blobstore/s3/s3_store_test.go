package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cohort/blobstore"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket, Options{
		Prefix:   fmt.Sprintf("test-cohort-%d/", time.Now().UnixNano()),
		Endpoint: os.Getenv("S3_ENDPOINT"),
	})
	require.NoError(t, err)

	data := []byte("CustomerID,Cluster\nC0001,2\n")
	require.NoError(t, store.Put(ctx, "cluster_assignments.csv", data))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "cluster_assignments.csv")

	got, err := blobstore.ReadAll(ctx, store, "cluster_assignments.csv")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
