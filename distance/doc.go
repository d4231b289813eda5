// Package distance provides the vector kernels used by clustering and
// similarity search.
//
//   - SquaredL2: squared Euclidean distance (k-means assignment and inertia)
//   - Cosine: cosine similarity with a zero-magnitude guard
//   - Dot: inner product
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	sim := distance.Cosine(a, b)
package distance
