// Package feature joins raw records into a per-customer view and aggregates
// that view into a fixed-shape feature matrix.
//
// Join is the only place where input shape is validated: duplicate keys,
// dangling foreign keys and missing values are resolved here and reported as
// model.Warnings. Build is a pure function of the joined view and the
// configured as-of timestamp.
//
// Rows of a Matrix are ordered by ascending CustomerID.
package feature
