// Package storage holds decoded point payloads as typed columns.
//
// A PointBlock maps field names to homogeneous columns in field declaration
// order; it is the unit exchanged between the codecs and callers. Columns are
// either owned heap buffers (write path, ascii/compressed reads) or borrowed
// views aliasing memory-mapped file bytes (binary read path on little-endian
// hosts). Borrowed views are invalid once the backing mapping is released;
// call Detach to convert them into owned copies first.
package storage
