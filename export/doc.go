// Package export writes the results of a run to a blobstore.Store.
//
// Tables are CSV files, fitted parameters are JSON documents encoded with a
// codec.Codec. Every name may carry a compression suffix (".zst", ".lz4"),
// in which case the content is compressed accordingly.
package export
