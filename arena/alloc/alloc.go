package alloc

import (
	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/internal/buf"
	"github.com/Freeze777/heapkit/internal/format"
)

// Alloc allocates at least size usable bytes out of the arena.
//
// The search is first-fit: a linear scan from the base for the earliest
// free block large enough. When no block fits, a new block is appended
// after the tail; when the arena cannot hold it either, ErrArenaFull is
// returned and the heap is unchanged.
func (h *Heap) Alloc(size int) (Ref, []byte, error) {
	h.stats.AllocCalls++
	if size <= 0 {
		return InvalidRef, nil, ErrZeroSize
	}

	// The very first allocation installs the base block.
	if h.dir.Empty() {
		off, err := h.dir.InstallFirst(size)
		if err != nil {
			return InvalidRef, nil, err
		}
		h.freespace -= size + format.HeaderSize
		h.stats.BytesAllocated += int64(size)
		h.log.Debug("alloc", "size", size, "off", off, "path", "first")
		blk, err := h.dir.Block(off)
		if err != nil {
			return InvalidRef, nil, err
		}
		return off + format.HeaderSize, h.payload(blk), nil
	}

	off, found := h.searchFreespace(size)
	if !found {
		off, err := h.dir.Extend(size)
		if err != nil {
			h.log.Debug("alloc failed", "size", size, "err", err)
			return InvalidRef, nil, err
		}
		h.freespace -= size + format.HeaderSize
		h.stats.ExtendCount++
		h.stats.BytesAllocated += int64(size)
		h.log.Debug("alloc", "size", size, "off", off, "path", "extend")
		blk, err := h.dir.Block(off)
		if err != nil {
			return InvalidRef, nil, err
		}
		return off + format.HeaderSize, h.payload(blk), nil
	}

	blk, err := h.dir.Block(off)
	if err != nil {
		return InvalidRef, nil, err
	}

	// Split when the remainder would be worth keeping; otherwise hand
	// over the whole block and accept the slack as internal
	// fragmentation. On a split the counter drops the full matched size,
	// then takes the remainder back.
	handed := blk.Size
	if h.splitEligible(blk.Size, size) {
		h.freespace -= blk.Size
		rem := h.split(blk, size)
		h.freespace += rem.Size
		handed = size
	} else {
		h.freespace -= size
	}
	format.PutBlockSize(h.dir.Arena().Bytes(), blk.Offset, handed, false)
	blk.Size = handed
	blk.Free = false
	h.stats.ReuseCount++
	h.stats.BytesAllocated += int64(handed)
	h.log.Debug("alloc", "size", size, "off", off, "path", "reuse", "handed", handed)
	return off + format.HeaderSize, h.payload(blk), nil
}

// AllocZeroed allocates n*elemSize bytes and writes zero to every byte of
// the returned payload. The multiplication is overflow-checked.
func (h *Heap) AllocZeroed(n, elemSize int) (Ref, []byte, error) {
	if n <= 0 || elemSize <= 0 {
		h.stats.AllocCalls++
		return InvalidRef, nil, ErrZeroSize
	}
	size, ok := buf.MulOverflowSafe(n, elemSize)
	if !ok {
		h.stats.AllocCalls++
		return InvalidRef, nil, ErrSizeOverflow
	}
	ref, payload, err := h.Alloc(size)
	if err != nil {
		return InvalidRef, nil, err
	}
	clear(payload)
	return ref, payload, nil
}

// searchFreespace performs the first-fit scan: the earliest-address free
// block whose size covers the request. No best-fit tie-breaking.
func (h *Heap) searchFreespace(size int) (uint32, bool) {
	cur, ok := h.dir.Base()
	if !ok {
		return arena.InvalidRef, false
	}
	for {
		blk, err := h.dir.Block(cur)
		if err != nil {
			return arena.InvalidRef, false
		}
		if blk.Free && blk.Size >= size {
			return cur, true
		}
		if blk.Next == arena.InvalidRef {
			return arena.InvalidRef, false
		}
		cur = blk.Next
	}
}

// splitEligible reports whether a block of blockSize can be split at keep
// bytes: the remainder after the new header must be at least the
// threshold, which also guarantees it is a legal block.
func (h *Heap) splitEligible(blockSize, keep int) bool {
	return blockSize-keep-format.HeaderSize >= h.threshold
}

// split carves a new free block out of blk at keep payload bytes. The new
// header lands at blk + HeaderSize + keep, inherits blk's successor, and
// becomes the tail when it has none. blk shrinks to exactly keep bytes
// and keeps its in-use/free state. Returns the remainder block.
func (h *Heap) split(blk format.Block, keep int) format.Block {
	data := h.dir.Arena().Bytes()
	remOff := blk.Offset + format.HeaderSize + keep
	rem := format.Block{
		Offset: remOff,
		Size:   blk.Size - keep - format.HeaderSize,
		Free:   true,
		Next:   blk.Next,
	}
	format.PutBlock(data, rem)

	blk.Size = keep
	blk.Next = uint32(remOff)
	format.PutBlock(data, blk)

	if rem.Next == arena.InvalidRef {
		h.dir.SetTail(uint32(remOff))
	}
	h.stats.SplitCount++
	h.log.Debug("split", "off", blk.Offset, "keep", keep, "remainder", rem.Size)
	return rem
}
