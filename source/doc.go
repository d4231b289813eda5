// Package source loads and cleans the input snapshot.
//
// A snapshot consists of three delimited files (customers, products,
// transactions) read from a blobstore.Store. Columns are located by header
// name; unknown columns are ignored. Empty cells become missing fields on
// the model records, malformed non-empty cells are reported as *ParseError.
//
// Clean applies the input cleaning policy and Summarize reports record and
// missing-value counts for logging.
package source
