package alloc

import (
	"io"
	"log/slog"

	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/internal/format"
)

// DefaultThreshold is the minimum remainder size, in bytes, required to
// justify splitting an oversized free block instead of handing the whole
// block over as internal fragmentation.
const DefaultThreshold = 8

// Heap is a first-fit allocator over a fixed arena. It owns the block
// directory, the best-effort free-space counter, and operation statistics.
// Not safe for concurrent use.
type Heap struct {
	dir       *arena.Directory
	threshold int
	freespace int
	log       *slog.Logger
	stats     Stats
}

// Option configures a Heap.
type Option func(*Heap)

// WithThreshold sets the split threshold. Values < 1 are ignored.
func WithThreshold(n int) Option {
	return func(h *Heap) {
		if n >= 1 {
			h.threshold = n
		}
	}
}

// WithLogger injects a structured logger for allocator events (alloc,
// free, fuse, defragment, invalid handle). The default discards all
// output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) {
		if l != nil {
			h.log = l
		}
	}
}

// New creates a heap over the given arena. For an arena that already
// carries a block directory (an opened image), the chain is validated and
// the free-space counter is derived from a scan; a fresh arena starts
// with the full capacity free.
func New(a *arena.Arena, opts ...Option) (*Heap, error) {
	dir, err := arena.NewDirectory(a)
	if err != nil {
		return nil, err
	}
	h := &Heap{
		dir:       dir,
		threshold: DefaultThreshold,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.freespace = h.CountFreeBytes()
	return h, nil
}

// Threshold returns the configured split threshold.
func (h *Heap) Threshold() int { return h.threshold }

// Capacity returns the fixed capacity of the backing arena.
func (h *Heap) Capacity() int { return h.dir.Arena().Capacity() }

// Arena returns the backing arena (for Flush/Close of image-backed heaps).
func (h *Heap) Arena() *arena.Arena { return h.dir.Arena() }

// lookup validates a payload handle: the candidate header must lie within
// [base, tail] and appear as an actual node in the directory chain. It
// returns the decoded block and the immediate predecessor header offset
// (InvalidRef for the base block).
func (h *Heap) lookup(ref Ref) (blk format.Block, prev uint32, ok bool) {
	if ref < format.HeaderSize {
		return format.Block{}, arena.InvalidRef, false
	}
	hdr := ref - format.HeaderSize
	prev, ok = h.dir.Verify(hdr)
	if !ok {
		return format.Block{}, arena.InvalidRef, false
	}
	blk, err := h.dir.Block(hdr)
	if err != nil {
		return format.Block{}, arena.InvalidRef, false
	}
	return blk, prev, true
}

// payload returns the payload view of a block.
func (h *Heap) payload(blk format.Block) []byte {
	start := blk.Offset + format.HeaderSize
	return h.dir.Arena().Bytes()[start : start+blk.Size]
}

var _ Allocator = (*Heap)(nil)
