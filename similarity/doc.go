// Package similarity computes exact all-pairs cosine similarity between
// customer feature vectors and derives ranked lookalike lists.
//
// The work is O(n²) in the number of customers. A similarity block of r rows
// against a population of n customers holds r·n float64 scores and is
// reserved against a resource.Controller memory budget before allocation.
// Callers that cannot afford the full n×n matrix compute blocks of rows, see
// Options.BatchRows.
package similarity
