// Package mmap maps input files read-only into memory.
//
// Local snapshots are read through a Mapping so that CSV parsing works on
// the page cache directly instead of copying the file into the heap.
//
//	m, err := mmap.Open("Transactions.csv")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// On Unix mmap(2) and madvise(2) are used; on Windows CreateFileMapping and
// MapViewOfFile (Advise is a no-op).
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers must
// not use slices returned by Bytes after Close.
package mmap
