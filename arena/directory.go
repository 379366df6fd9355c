package arena

import (
	"errors"
	"fmt"

	"github.com/Freeze777/heapkit/internal/format"
)

// InvalidRef is the "no block" sentinel, re-exported for callers.
const InvalidRef = format.InvalidRef

// Directory is the singly linked, address-ordered chain of block headers
// threaded through an arena. It tracks the tail block and knows whether
// any block has been installed yet; everything else lives in the arena
// bytes themselves.
type Directory struct {
	a     *Arena
	tail  uint32
	empty bool
}

// NewDirectory binds a directory to an arena, rebuilding the chain state
// (tail, emptiness) from the header bytes. A zeroed arena yields an empty
// directory; an image with a malformed chain yields ErrCorrupt.
func NewDirectory(a *Arena) (*Directory, error) {
	d := &Directory{a: a, tail: InvalidRef, empty: true}
	if err := d.rebuild(); err != nil {
		return nil, err
	}
	return d, nil
}

// Arena returns the backing arena.
func (d *Directory) Arena() *Arena { return d.a }

// Empty reports whether no block has been installed yet.
func (d *Directory) Empty() bool { return d.empty }

// Base returns the first header offset. ok is false while the directory
// is empty. The base block, once installed, always lives at offset 0.
func (d *Directory) Base() (ref uint32, ok bool) {
	if d.empty {
		return InvalidRef, false
	}
	return 0, true
}

// Tail returns the highest-address header offset. ok is false while the
// directory is empty.
func (d *Directory) Tail() (ref uint32, ok bool) {
	if d.empty {
		return InvalidRef, false
	}
	return d.tail, true
}

// SetTail records a new tail block. Callers (split, fuse) invoke it when
// the block they rewrote has no successor.
func (d *Directory) SetTail(ref uint32) { d.tail = ref }

// Block decodes the header at ref, bounds-checked against the arena.
func (d *Directory) Block(ref uint32) (format.Block, error) {
	return format.ReadBlock(d.a.Bytes(), int(ref))
}

// Advance returns the header following ref in address order. ok is false
// when ref is the tail.
func (d *Directory) Advance(ref uint32) (next uint32, ok bool) {
	blk, err := d.Block(ref)
	if err != nil || blk.Next == InvalidRef {
		return InvalidRef, false
	}
	return blk.Next, true
}

// InstallFirst places the very first block at the arena base, marked in
// use, and makes it the tail. Returns ErrArenaFull when even a single
// block of the requested size cannot fit.
func (d *Directory) InstallFirst(size int) (uint32, error) {
	if !d.empty {
		return InvalidRef, errors.New("arena: directory already has a base block")
	}
	if format.HeaderSize+size > d.a.Capacity() {
		return InvalidRef, fmt.Errorf("%w: need %d bytes, capacity %d",
			ErrArenaFull, format.HeaderSize+size, d.a.Capacity())
	}
	format.PutBlock(d.a.Bytes(), format.Block{
		Offset: 0,
		Size:   size,
		Free:   false,
		Next:   InvalidRef,
	})
	d.tail = 0
	d.empty = false
	return 0, nil
}

// Extend installs a brand-new in-use header immediately after the current
// tail's payload and makes it the new tail. When the new block would not
// fit, Extend reports ErrArenaFull and leaves the chain untouched.
func (d *Directory) Extend(size int) (uint32, error) {
	if d.empty {
		return d.InstallFirst(size)
	}
	tail, err := d.Block(d.tail)
	if err != nil {
		return InvalidRef, err
	}
	newOff := tail.Offset + format.HeaderSize + tail.Size
	if newOff+format.HeaderSize+size > d.a.Capacity() {
		return InvalidRef, fmt.Errorf("%w: need %d bytes at offset %d, capacity %d",
			ErrArenaFull, format.HeaderSize+size, newOff, d.a.Capacity())
	}
	b := d.a.Bytes()
	format.PutBlock(b, format.Block{
		Offset: newOff,
		Size:   size,
		Free:   false,
		Next:   InvalidRef,
	})
	format.PutBlockNext(b, tail.Offset, uint32(newOff))
	d.tail = uint32(newOff)
	return uint32(newOff), nil
}

// Verify reports whether cand is a live header in the chain, and if so
// the offset of its immediate predecessor (InvalidRef for the base
// block). The check is a full linear scan; any offset that is not exactly
// a known header start is rejected.
func (d *Directory) Verify(cand uint32) (prev uint32, ok bool) {
	if d.empty || cand > d.tail {
		return InvalidRef, false
	}
	prev = InvalidRef
	cur := uint32(0)
	for {
		if cur == cand {
			return prev, true
		}
		next, more := d.Advance(cur)
		if !more {
			return InvalidRef, false
		}
		prev = cur
		cur = next
	}
}

// rebuild walks the header chain from the arena base to recover the tail.
// A zero size field at offset 0 marks a fresh arena with no blocks.
func (d *Directory) rebuild() error {
	b := d.a.Bytes()
	if format.ReadI32(b, format.SizeFieldOffset) == 0 {
		return nil
	}
	off := 0
	for {
		blk, err := format.ReadBlock(b, off)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if blk.Next == InvalidRef {
			d.tail = uint32(off)
			d.empty = false
			return nil
		}
		// Headers are contiguous: the next header starts exactly where
		// this block's payload ends.
		if int(blk.Next) != off+format.HeaderSize+blk.Size {
			return fmt.Errorf("%w: block at %d links to %d, expected %d",
				ErrCorrupt, off, blk.Next, off+format.HeaderSize+blk.Size)
		}
		off = int(blk.Next)
	}
}
