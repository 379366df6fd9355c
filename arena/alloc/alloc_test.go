package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeze777/heapkit/arena"
	"github.com/Freeze777/heapkit/internal/format"
)

func TestAllocZeroSizeFails(t *testing.T) {
	h := newTestHeap(t, 1024)

	ref, payload, err := h.Alloc(0)
	assert.ErrorIs(t, err, ErrZeroSize)
	assert.Equal(t, InvalidRef, ref)
	assert.Nil(t, payload)

	_, _, err = h.Alloc(-3)
	assert.ErrorIs(t, err, ErrZeroSize)

	assert.True(t, h.dir.Empty(), "failed request must not install a block")
	assert.Equal(t, 1024, h.FreeBytes())
}

func TestFirstAllocInstallsBaseBlock(t *testing.T) {
	h := newTestHeap(t, 1024)

	ref, payload := mustAlloc(t, h, 32)
	assert.Equal(t, Ref(format.HeaderSize), ref,
		"first payload starts right after the base header")
	assert.Len(t, payload, 32)
	assert.Equal(t, 1024-32-format.HeaderSize, h.FreeBytes())

	assertChainInvariants(t, h)
}

func TestAllocExtendsWhenNoFreeBlockFits(t *testing.T) {
	h := newTestHeap(t, 1024)

	a, _ := mustAlloc(t, h, 32)
	b, _ := mustAlloc(t, h, 16)

	assert.Equal(t, Ref(format.HeaderSize), a)
	assert.Equal(t, a+32+format.HeaderSize, b,
		"extension appends directly after the previous payload")

	stats := h.Stats()
	assert.Equal(t, 1, stats.ExtendCount)
	assert.Equal(t, 0, stats.ReuseCount)
	assertChainInvariants(t, h)
}

func TestAllocPayloadIsWritable(t *testing.T) {
	h := newTestHeap(t, 1024)

	_, payload := mustAlloc(t, h, 16)
	copy(payload, []byte("0123456789abcdef"))

	_, next := mustAlloc(t, h, 16)
	assert.Equal(t, []byte("0123456789abcdef"), payload[:16],
		"later allocations must not clobber earlier payloads")
	copy(next, []byte("fedcba9876543210"))
	assert.Equal(t, []byte("0123456789abcdef"), payload[:16])
}

func TestAllocArenaExhausted(t *testing.T) {
	h := newTestHeap(t, 64)

	// 64 = header(8) + 24 + header(8) + 24 exactly.
	mustAlloc(t, h, 24)
	mustAlloc(t, h, 24)

	ref, payload, err := h.Alloc(8)
	assert.ErrorIs(t, err, arena.ErrArenaFull)
	assert.Equal(t, InvalidRef, ref)
	assert.Nil(t, payload)

	assertChainInvariants(t, h)
	assert.Len(t, h.DumpState(), 2, "failed extension leaves the directory unchanged")
}

func TestAllocFirstFitPrefersEarliestAddress(t *testing.T) {
	h := newTestHeap(t, 4096)

	a, _ := mustAlloc(t, h, 64)
	mustAlloc(t, h, 16) // guard between the two free candidates
	c, _ := mustAlloc(t, h, 64)
	mustAlloc(t, h, 16) // tail guard

	require.NoError(t, h.Free(a))
	require.NoError(t, h.Free(c))

	// Both free blocks fit; the earlier address must win even though the
	// later one is an equally good match.
	ref, _, err := h.Alloc(32)
	require.NoError(t, err)
	assert.Equal(t, a, ref, "first-fit selects the earliest-address free block")
	assertChainInvariants(t, h)
}

func TestReleaseThenReallocateReusesBlock(t *testing.T) {
	h := newTestHeap(t, 4096)

	a, _ := mustAlloc(t, h, 64)
	mustAlloc(t, h, 16) // guard so the freed block cannot fuse away

	require.NoError(t, h.Free(a))

	ref, payload, err := h.Alloc(40)
	require.NoError(t, err)
	assert.Equal(t, a, ref, "a smaller request must reuse the freed block, not extend")
	assert.Len(t, payload, 40, "reused block is split down to the request")

	stats := h.Stats()
	assert.Equal(t, 1, stats.ReuseCount)
	assert.Equal(t, 1, stats.SplitCount)
	assertChainInvariants(t, h)
}
