package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/internal/format"
)

// newTestHeap creates a heap over a fresh in-memory arena.
func newTestHeap(t *testing.T, capacity int, opts ...Option) *Heap {
	t.Helper()
	h, err := New(arena.New(capacity), opts...)
	require.NoError(t, err)
	return h
}

// assertChainInvariants walks the directory and checks the structural
// invariants: headers contiguous in strictly increasing address order,
// every block inside the arena, and the tail designating the
// highest-address block.
func assertChainInvariants(t *testing.T, h *Heap) {
	t.Helper()

	cur, ok := h.dir.Base()
	if !ok {
		assert.True(t, h.dir.Empty())
		return
	}
	prevEnd := 0
	last := cur
	for {
		blk, err := h.dir.Block(cur)
		require.NoError(t, err)
		require.Equal(t, prevEnd, blk.Offset, "headers must be contiguous")
		prevEnd = blk.Offset + format.HeaderSize + blk.Size
		require.LessOrEqual(t, prevEnd, h.Capacity(), "block must end inside the arena")
		last = cur
		if blk.Next == arena.InvalidRef {
			break
		}
		require.Greater(t, int(blk.Next), blk.Offset, "chain must never point backward")
		cur = blk.Next
	}
	tail, ok := h.dir.Tail()
	require.True(t, ok)
	assert.Equal(t, last, tail, "tail must be the highest-address block")
}

// mustAlloc allocates or fails the test.
func mustAlloc(t *testing.T, h *Heap, size int) (Ref, []byte) {
	t.Helper()
	ref, payload, err := h.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, InvalidRef, ref)
	require.NotNil(t, payload)
	require.GreaterOrEqual(t, len(payload), size)
	return ref, payload
}
