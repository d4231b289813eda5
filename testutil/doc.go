// Package testutil provides testing utilities for cohort.
//
// This package is intended for use in tests only. It provides a seeded,
// thread-safe random source, vector generators and synthetic datasets.
//
// # Random Vectors
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.Blobs([][]float64{{0, 0}, {10, 10}}, 50, 0.5)
//
// # Synthetic Datasets
//
//	ds := rng.Dataset(testutil.DatasetOptions{Customers: 200, AsOf: asOf})
package testutil
