package alloc

import (
	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/internal/format"
)

// Realloc resizes an allocation.
//
//   - Realloc(InvalidRef, n) behaves as Alloc(n).
//   - Realloc(ref, 0) behaves as Free(ref) and returns InvalidRef.
//   - Growing absorbs the immediately following block in place when it is
//     free and covers the shortfall, splitting off any remainder worth
//     keeping; otherwise the payload moves (allocate, copy, free).
//   - Shrinking splits in place when the remainder reaches the threshold;
//     otherwise the payload moves as well.
//   - Resizing to the current size is a no-op returning the same handle.
func (h *Heap) Realloc(ref Ref, newSize int) (Ref, []byte, error) {
	if ref == InvalidRef {
		return h.Alloc(newSize)
	}
	if newSize <= 0 {
		return InvalidRef, nil, h.Free(ref)
	}
	h.stats.ReallocCalls++

	blk, _, ok := h.lookup(ref)
	if !ok {
		h.stats.InvalidHandles++
		h.log.Warn("invalid address", "ref", ref)
		return InvalidRef, nil, ErrBadRef
	}

	switch {
	case newSize > blk.Size:
		return h.grow(ref, blk, newSize)
	case newSize < blk.Size:
		return h.shrink(ref, blk, newSize)
	default:
		return ref, h.payload(blk), nil
	}
}

// grow extends an allocation. In-place growth absorbs the next block
// exactly like fuse does; the absorbed payload leaves the free counter
// and the tail moves back when the absorbed block was the tail.
func (h *Heap) grow(ref Ref, blk format.Block, newSize int) (Ref, []byte, error) {
	if blk.Next != arena.InvalidRef {
		nb, err := h.dir.Block(blk.Next)
		if err == nil && nb.Free && nb.Size >= newSize-blk.Size-format.HeaderSize {
			data := h.dir.Arena().Bytes()
			blk.Size += format.HeaderSize + nb.Size
			h.freespace -= nb.Size
			if nb.Next == arena.InvalidRef {
				h.dir.SetTail(uint32(blk.Offset))
			}
			blk.Next = nb.Next
			format.PutBlock(data, blk)
			h.stats.GrowsInPlace++
			h.log.Debug("realloc", "off", blk.Offset, "size", newSize, "path", "absorb")

			if h.splitEligible(blk.Size, newSize) {
				rem := h.split(blk, newSize)
				h.freespace += rem.Size
				blk.Size = newSize
				blk.Next = uint32(rem.Offset)
			}
			return ref, h.payload(blk), nil
		}
	}
	// Copy the old payload bytes into a fresh allocation, then release
	// the old block. Alloc cannot hand back the same block because it is
	// still marked in use at this point.
	return h.move(blk, newSize, blk.Size)
}

// shrink reduces an allocation. An in-place split keeps the handle; when
// the remainder is below the threshold the payload moves instead.
func (h *Heap) shrink(ref Ref, blk format.Block, newSize int) (Ref, []byte, error) {
	if h.splitEligible(blk.Size, newSize) {
		rem := h.split(blk, newSize)
		h.freespace += rem.Size
		blk.Size = newSize
		blk.Next = uint32(rem.Offset)
		h.log.Debug("realloc", "off", blk.Offset, "size", newSize, "path", "shrink")
		return ref, h.payload(blk), nil
	}
	return h.move(blk, newSize, newSize)
}

// move implements the allocate-copy-free fallback. copyLen must not
// exceed what either block can hold.
func (h *Heap) move(old format.Block, newSize, copyLen int) (Ref, []byte, error) {
	newRef, payload, err := h.Alloc(newSize)
	if err != nil {
		return InvalidRef, nil, err
	}
	start := old.Offset + format.HeaderSize
	copy(payload, h.dir.Arena().Bytes()[start:start+copyLen])
	h.log.Debug("realloc", "from", old.Offset, "size", newSize, "path", "move")
	if err := h.Free(Ref(start)); err != nil {
		return newRef, payload, err
	}
	return newRef, payload, nil
}
