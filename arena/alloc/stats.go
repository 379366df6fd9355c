package alloc

import (
	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/internal/format"
)

// Stats holds operation counters for testing and instrumentation.
type Stats struct {
	AllocCalls     int   // Total Alloc()/AllocZeroed() calls
	FreeCalls      int   // Free() calls that named a handle
	ReallocCalls   int   // Realloc() calls that resized (not alias paths)
	ReuseCount     int   // Allocations satisfied by first-fit reuse
	ExtendCount    int   // Allocations that appended after the tail
	SplitCount     int   // Block splits
	FuseCount      int   // Adjacent free blocks absorbed
	GrowsInPlace   int   // Realloc growths absorbed into the next block
	SweepCount     int   // Full defragmentation sweeps
	InvalidHandles int   // Rejected Free/Realloc handles
	BytesAllocated int64 // Total payload bytes handed out
	BytesFreed     int64 // Total payload bytes released
}

// Stats returns a copy of the current counters.
func (h *Heap) Stats() Stats { return h.stats }

// FreeBytes returns the running free-byte counter. It is best-effort
// telemetry: the no-split reuse path leaves handed-out slack counted as
// free. Use CountFreeBytes for a derived, drift-free figure.
func (h *Heap) FreeBytes() int { return h.freespace }

// CountFreeBytes derives the free-byte count from a directory scan: the
// payload sizes of all free blocks plus the unclaimed arena capacity
// beyond the tail block's extent.
func (h *Heap) CountFreeBytes() int {
	capacity := h.dir.Arena().Capacity()
	cur, ok := h.dir.Base()
	if !ok {
		return capacity
	}
	total := 0
	for {
		blk, err := h.dir.Block(cur)
		if err != nil {
			return total
		}
		if blk.Free {
			total += blk.Size
		}
		if blk.Next == arena.InvalidRef {
			return total + capacity - (blk.Offset + format.HeaderSize + blk.Size)
		}
		cur = blk.Next
	}
}

// BlockInfo describes one block for diagnostic enumeration.
type BlockInfo struct {
	Size int  // Payload capacity in bytes
	Free bool // True when the payload is unallocated
}

// DumpState enumerates all blocks in address order.
func (h *Heap) DumpState() []BlockInfo {
	var out []BlockInfo
	cur, ok := h.dir.Base()
	if !ok {
		return out
	}
	for {
		blk, err := h.dir.Block(cur)
		if err != nil {
			return out
		}
		out = append(out, BlockInfo{Size: blk.Size, Free: blk.Free})
		if blk.Next == arena.InvalidRef {
			return out
		}
		cur = blk.Next
	}
}
