// Package mmap provides read-only memory-mapped file access.
//
// Memory mapping lets the PCD reader hand out column views directly over
// file bytes without copying the payload through intermediate buffers,
// which matters for clouds with millions of points.
//
// # Usage
//
//	m, err := mmap.Open("cloud.pcd")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy access to file contents
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads; it is mapped read-only and never
// written through. Close is idempotent, but callers must ensure no
// goroutine touches Bytes() or any view derived from it after Close
// returns.
package mmap
