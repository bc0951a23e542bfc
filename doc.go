// Package pcdgo reads and writes PCD (Point Cloud Data) files.
//
// A PCD file is a textual header describing the point-field layout followed
// by the payload in one of three encodings: ascii, binary or
// binary_compressed (LZF, compatible with the PCL reference implementation).
// The decoded payload is a set of typed columns, one per field, in field
// declaration order.
//
// # Reading
//
//	cloud, err := pcdgo.Open("scan.pcd")
//	if err != nil { ... }
//	defer cloud.Close()
//
//	xs, _ := cloud.Block.Column("x")
//	for _, x := range xs.(storage.F32Column) { ... }
//
// Open memory-maps the file. For plain binary payloads with a single field
// the returned column is a zero-copy view into the mapping; such views are
// invalid after Close. Call cloud.Detach() if columns must outlive the
// mapping, or use ReadBuffer for in-memory sources (it always copies):
//
//	hdr, block, err := pcdgo.ReadBuffer(data)
//
// # Writing
//
//	block := storage.NewPointBlock(len(xs))
//	block.Set("x", storage.F32Column(xs))
//	block.Set("y", storage.F32Column(ys))
//	block.Set("z", storage.F32Column(zs))
//
//	err := pcdgo.WriteFile("out.pcd", block, header.BinaryCompressed)
//
// WriteFile validates the block, writes to a temporary file and renames it
// into place, so a failing write never leaves a truncated file behind.
package pcdgo
