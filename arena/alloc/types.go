package alloc

import "github.com/Freeze777/heapkit/arena"

// Ref is a payload handle - a uint32 offset of the payload start within
// the arena (header offset + format.HeaderSize).
type Ref = uint32

// InvalidRef is the "no allocation" handle.
const InvalidRef Ref = arena.InvalidRef

// Allocator defines the allocation surface of a heap.
//
// Heap is the standard implementation. The interface exists so callers
// (editors, trace replay) can swap in alternative strategies without
// touching call sites.
type Allocator interface {
	// Alloc allocates at least size usable bytes.
	// Returns the payload handle, a view of the payload, and any error.
	Alloc(size int) (Ref, []byte, error)

	// AllocZeroed allocates n*elemSize bytes and zero-fills the payload.
	AllocZeroed(n, elemSize int) (Ref, []byte, error)

	// Free releases an allocation. Invalid handles are rejected as a
	// diagnostic no-op.
	Free(ref Ref) error

	// Realloc resizes an allocation in place when possible, falling back
	// to allocate-copy-free.
	Realloc(ref Ref, newSize int) (Ref, []byte, error)
}
