package alloc

import (
	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/internal/format"
)

// Free releases an allocation. Freeing InvalidRef is a no-op. A handle
// that does not name a live payload start is rejected with ErrBadRef and
// leaves the directory and the free-space counter unchanged.
//
// After every release, valid or not, a full defragmentation sweep runs.
// The sweep is redundant with the targeted fusing below, intentionally:
// it is a maintenance safety net, not part of the release itself.
func (h *Heap) Free(ref Ref) error {
	if ref == InvalidRef {
		return nil
	}
	h.stats.FreeCalls++
	defer h.Defragment()

	blk, prev, ok := h.lookup(ref)
	if !ok {
		h.stats.InvalidHandles++
		h.log.Warn("invalid address", "ref", ref)
		return ErrBadRef
	}

	format.PutBlockSize(h.dir.Arena().Bytes(), blk.Offset, blk.Size, true)
	h.freespace += blk.Size
	h.stats.BytesFreed += int64(blk.Size)
	h.log.Debug("free", "off", blk.Offset, "size", blk.Size)

	h.fuse(uint32(blk.Offset))
	if prev != arena.InvalidRef {
		if pb, err := h.dir.Block(prev); err == nil && pb.Free {
			h.fuse(prev)
		}
	}
	return nil
}

// fuse absorbs the blocks following off while they are free: the payload
// ranges merge and only the reclaimed header bytes are newly free (the
// absorbed payloads were already counted). The surviving block becomes
// the tail when nothing follows it.
func (h *Heap) fuse(off uint32) {
	data := h.dir.Arena().Bytes()
	blk, err := h.dir.Block(off)
	if err != nil {
		return
	}
	for blk.Next != arena.InvalidRef {
		nb, err := h.dir.Block(blk.Next)
		if err != nil || !nb.Free {
			break
		}
		h.log.Debug("fuse", "off", blk.Offset, "left", blk.Size, "right", nb.Size)
		blk.Size += format.HeaderSize + nb.Size
		blk.Next = nb.Next
		format.PutBlock(data, blk)
		h.freespace += format.HeaderSize
		h.stats.FuseCount++
	}
	if blk.Next == arena.InvalidRef {
		h.dir.SetTail(uint32(blk.Offset))
	}
}

// Defragment sweeps the whole directory and fuses every adjacent
// free-free pair. Invoking it twice in a row yields the same directory
// as invoking it once.
func (h *Heap) Defragment() {
	h.stats.SweepCount++
	cur, ok := h.dir.Base()
	if !ok {
		return
	}
	for {
		blk, err := h.dir.Block(cur)
		if err != nil {
			return
		}
		if blk.Free && blk.Next != arena.InvalidRef {
			if nb, err := h.dir.Block(blk.Next); err == nil && nb.Free {
				h.fuse(cur)
				blk, err = h.dir.Block(cur)
				if err != nil {
					return
				}
			}
		}
		if blk.Next == arena.InvalidRef {
			return
		}
		cur = blk.Next
	}
}
