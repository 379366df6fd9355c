package alloc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocZeroedScrubsReusedBlock(t *testing.T) {
	h := newTestHeap(t, 1024)

	// Dirty a block, release it, then claim it again zeroed.
	a, payload := mustAlloc(t, h, 64)
	for i := range payload {
		payload[i] = 0xAB
	}
	mustAlloc(t, h, 16) // guard keeps the sweep from collapsing the chain
	require.NoError(t, h.Free(a))

	ref, got, err := h.AllocZeroed(8, 8)
	require.NoError(t, err)
	assert.Equal(t, a, ref, "first-fit hands the dirty block back")
	require.Len(t, got, 64)
	for i, b := range got {
		require.Zerof(t, b, "byte %d must be scrubbed", i)
	}
	assertChainInvariants(t, h)
}

func TestAllocZeroedRejectsZeroCounts(t *testing.T) {
	h := newTestHeap(t, 1024)

	for _, tc := range []struct {
		name    string
		n, elem int
	}{
		{"zero count", 0, 8},
		{"zero element size", 4, 0},
		{"negative count", -1, 8},
		{"negative element size", 4, -8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ref, payload, err := h.AllocZeroed(tc.n, tc.elem)
			assert.ErrorIs(t, err, ErrZeroSize)
			assert.Equal(t, InvalidRef, ref)
			assert.Nil(t, payload)
		})
	}
	assert.Empty(t, h.DumpState(), "rejected requests must not touch the arena")
}

func TestAllocZeroedDetectsOverflow(t *testing.T) {
	h := newTestHeap(t, 1024)

	ref, payload, err := h.AllocZeroed(math.MaxInt/2, 4)
	assert.ErrorIs(t, err, ErrSizeOverflow)
	assert.Equal(t, InvalidRef, ref)
	assert.Nil(t, payload)
	assert.Empty(t, h.DumpState())
}

func TestAllocZeroedCountsAsAlloc(t *testing.T) {
	h := newTestHeap(t, 1024)

	_, _, err := h.AllocZeroed(4, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Stats().AllocCalls)
}
