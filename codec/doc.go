// Package codec implements the three PCD payload encodings.
//
// Each encoding is a decode/encode function pair over the same column
// representation (storage.PointBlock):
//
//   - ascii: one point per line, space-separated tokens in field order
//   - binary: row-major little-endian records of Stride bytes
//   - binary_compressed: two little-endian uint32 length prefixes
//     (compressed, uncompressed) followed by an LZF-compressed column-major
//     buffer, compatible with the PCL reference implementation
//
// Decoders fill an empty PointBlock and report malformed payloads with
// typed errors carrying row and field context. The binary decoder may
// produce zero-copy views into the source buffer; see DecodeBinary for the
// exact policy.
package codec
