// Package cluster implements seeded k-means clustering with elbow
// diagnostics.
//
// Fit runs Lloyd's algorithm for a single k. Sweep runs k = 1..kMax and
// reports the (k, inertia) series; each k is seeded from the k-1 solution
// plus one k-means++ centroid, which keeps the series non-increasing. A
// Selector turns the series into a chosen k; MaxSecondDifference is the
// default policy and any func([]ElbowPoint) int can replace it.
//
// # Determinism
//
// Initialization draws from a PCG generator (math/rand/v2) seeded with
// (Config.Seed, 0). The seeding rule is:
//
//  1. the first centroid is row IntN(n);
//  2. every further centroid draws u = Float64() * sum(D²) and takes the
//     first row, in row order, whose cumulative D² exceeds u; if every D²
//     is zero, the lowest-index row not yet chosen is taken.
//
// The update step reduces per fixed-size chunk and merges chunks in order,
// so the result does not depend on the number of workers.
package cluster
