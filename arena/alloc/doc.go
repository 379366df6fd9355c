// Package alloc implements a first-fit heap allocator over a fixed arena.
//
// # Overview
//
// A Heap owns one arena.Arena and the block directory threaded through it,
// and carves payloads out of that region: first-fit search over the free
// blocks, threshold-based splitting of oversized matches, extension after
// the tail when nothing fits, coalescing of adjacent free blocks on every
// release, and a full-sweep defragmentation pass as a safety net.
//
// # Usage Example
//
//	h, err := alloc.New(arena.New(64<<10), alloc.WithThreshold(8))
//	if err != nil {
//	    return err
//	}
//
//	ref, buf, err := h.Alloc(256)
//	if err != nil {
//	    return err
//	}
//
//	// Write into buf...
//
//	// Later, grow the allocation or release it.
//	ref, buf, err = h.Realloc(ref, 512)
//	err = h.Free(ref)
//
// # Handles
//
// Refs are uint32 offsets of the payload within the arena, always equal to
// the block's header offset plus format.HeaderSize. InvalidRef is the "no
// allocation" value: Free(InvalidRef) is a no-op and Realloc(InvalidRef, n)
// behaves as Alloc(n). Any other value that is not exactly a live payload
// start is rejected with ErrBadRef and leaves the heap untouched.
//
// # Split threshold
//
// A free block is split only when the remainder after the requested bytes
// and the new header would be at least the configured threshold; smaller
// slack is handed to the caller as internal fragmentation. The default
// threshold is DefaultThreshold bytes.
//
// # Free-space accounting
//
// FreeBytes returns a running counter updated on every operation. It is
// best-effort telemetry and can drift from the true value in the no-split
// reuse path; CountFreeBytes derives the drift-free number from a
// directory scan instead.
//
// # Thread safety
//
// Heap instances are not thread-safe. The design is single-threaded by
// construction; callers must synchronize access externally.
package alloc
