// Package format houses the low-level layout of block headers inside an
// arena. The goal is to keep the byte-level encoding focused and
// allocation-free so higher-level packages can orchestrate the data in a
// more ergonomic form.
package format

const (
	// HeaderSize is the number of bytes used by the block header preceding
	// every payload (free or in-use) within an arena.
	//
	// Header layout (little-endian):
	//
	//	0x00  4  Signed payload size. Negative => in use, positive => free.
	//	         The absolute value excludes the header itself.
	//	0x04  4  Offset of the next header in address order, or InvalidRef.
	HeaderSize = 8

	// SizeFieldOffset is the offset of the signed size field within a header.
	SizeFieldOffset = 0x00

	// NextFieldOffset is the offset of the next-header field within a header.
	NextFieldOffset = 0x04
)

// InvalidRef is the sentinel stored in the next field of the tail block and
// used as the "no handle" value throughout the public API. No valid header
// or payload can ever live at this offset.
const InvalidRef = ^uint32(0)
