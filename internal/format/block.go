package format

import (
	"errors"
	"fmt"

	"github.com/Freeze777/heapkit/internal/buf"
)

// ErrTruncated indicates a header that does not fit inside the buffer.
var ErrTruncated = errors.New("format: truncated block header")

// Block represents a decoded block header.
type Block struct {
	Offset int    // Offset of the header within the arena buffer
	Size   int    // Payload size in bytes (excludes the header)
	Free   bool   // True when the block is marked as free
	Next   uint32 // Offset of the next header, or InvalidRef for the tail
}

// ReadBlock decodes the header at off within b. The caller must ensure off
// points at the start of an installed header; a stored size of zero marks
// uninitialized arena bytes and is rejected.
func ReadBlock(b []byte, off int) (Block, error) {
	if !buf.Has(b, off, HeaderSize) {
		return Block{}, fmt.Errorf("block at %d: %w", off, ErrTruncated)
	}
	raw := ReadI32(b, off+SizeFieldOffset)
	if raw == 0 {
		return Block{}, fmt.Errorf("block at %d: zero length", off)
	}
	inUse := raw < 0
	size := int(raw)
	if inUse {
		size = -size
	}
	if !buf.Has(b, off+HeaderSize, size) {
		return Block{}, fmt.Errorf("block at %d: %w", off, ErrTruncated)
	}
	return Block{
		Offset: off,
		Size:   size,
		Free:   !inUse,
		Next:   ReadU32(b, off+NextFieldOffset),
	}, nil
}

// PutBlock encodes blk at blk.Offset within b. It is the inverse of
// ReadBlock and assumes the caller already validated the bounds.
func PutBlock(b []byte, blk Block) {
	PutBlockSize(b, blk.Offset, blk.Size, blk.Free)
	PutU32(b, blk.Offset+NextFieldOffset, blk.Next)
}

// PutBlockSize writes only the signed size field of the header at off.
func PutBlockSize(b []byte, off, size int, free bool) {
	v := int32(size)
	if !free {
		v = -v
	}
	PutI32(b, off+SizeFieldOffset, v)
}

// PutBlockNext writes only the next field of the header at off.
func PutBlockNext(b []byte, off int, next uint32) {
	PutU32(b, off+NextFieldOffset, next)
}
