// Package arena implements the fixed-size backing store of the heap
// allocator and the address-ordered block directory threaded through it.
//
// # Overview
//
// An Arena is one fixed-capacity byte region. Every allocation the heap
// hands out is carved from this region; there is no fallback to the Go or
// OS allocator and the arena never grows. Block headers live inside the
// arena immediately before the payload they describe, forming a singly
// linked chain in strictly increasing address order.
//
// # Addressing
//
// All references are uint32 offsets into the arena buffer, validated
// against the arena bounds on every dereference. format.InvalidRef is the
// "no block" sentinel. A payload handle always equals the header offset
// plus format.HeaderSize.
//
// # Backing stores
//
// New creates an anonymous in-memory arena. Create and Open back the arena
// with a memory-mapped image file instead, so a heap can be flushed to
// disk and picked up again later. The directory is rebuilt from the header
// chain on Open; no state lives outside the arena bytes.
//
// # Thread safety
//
// Arena and Directory are not safe for concurrent use. The allocator is
// single-threaded by construction; callers must synchronize externally.
package arena
