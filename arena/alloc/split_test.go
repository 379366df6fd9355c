package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeze777/heapkit/internal/format"
)

// freeBlockOfSize arranges a free block of exactly size bytes at the
// arena base, with an in-use guard after it so it cannot fuse away.
func freeBlockOfSize(t *testing.T, h *Heap, size int) Ref {
	t.Helper()
	ref, _ := mustAlloc(t, h, size)
	mustAlloc(t, h, 16)
	require.NoError(t, h.Free(ref))
	return ref
}

func TestSplitSizesSumToOriginalMinusHeader(t *testing.T) {
	h := newTestHeap(t, 4096)
	freeBlockOfSize(t, h, 128)

	// 128 - 48 - header = 72 >= threshold, so the block splits.
	_, payload, err := h.Alloc(48)
	require.NoError(t, err)
	assert.Len(t, payload, 48)

	state := h.DumpState()
	require.Len(t, state, 3) // allocated prefix, free remainder, guard
	assert.Equal(t, BlockInfo{Size: 48, Free: false}, state[0])
	assert.Equal(t, BlockInfo{Size: 128 - 48 - format.HeaderSize, Free: true}, state[1])
	assert.Equal(t, 128-format.HeaderSize, state[0].Size+state[1].Size,
		"the two halves must sum to the original size minus one header")
	assertChainInvariants(t, h)
}

func TestSplitThresholdBoundaries(t *testing.T) {
	const threshold = 8

	testCases := []struct {
		name          string
		freeSize      int
		allocSize     int
		expectSplit   bool
		expectHanded  int // actual block size handed out
		expectTailSz  int
	}{
		{
			name:         "remainder equals threshold -> split",
			freeSize:     64,
			allocSize:    64 - format.HeaderSize - threshold,
			expectSplit:  true,
			expectHanded: 64 - format.HeaderSize - threshold,
			expectTailSz: threshold,
		},
		{
			name:         "remainder below threshold -> hand over whole block",
			freeSize:     64,
			allocSize:    64 - format.HeaderSize - threshold + 1,
			expectSplit:  false,
			expectHanded: 64,
		},
		{
			name:         "exact fit -> no split",
			freeSize:     64,
			allocSize:    64,
			expectSplit:  false,
			expectHanded: 64,
		},
		{
			name:         "large remainder -> split",
			freeSize:     256,
			allocSize:    32,
			expectSplit:  true,
			expectHanded: 32,
			expectTailSz: 256 - 32 - format.HeaderSize,
		},
		{
			name:         "slack smaller than a header -> hand over whole block",
			freeSize:     64,
			allocSize:    60,
			expectSplit:  false,
			expectHanded: 64,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHeap(t, 4096, WithThreshold(threshold))
			ref := freeBlockOfSize(t, h, tc.freeSize)

			got, payload, err := h.Alloc(tc.allocSize)
			require.NoError(t, err)
			assert.Equal(t, ref, got, "allocation must reuse the free block")
			assert.Len(t, payload, tc.expectHanded)

			state := h.DumpState()
			assert.Equal(t, BlockInfo{Size: tc.expectHanded, Free: false}, state[0])
			if tc.expectSplit {
				require.Len(t, state, 3)
				assert.Equal(t, BlockInfo{Size: tc.expectTailSz, Free: true}, state[1])
				assert.Equal(t, 1, h.Stats().SplitCount)
			} else {
				require.Len(t, state, 2, "no remainder block may appear")
				assert.Equal(t, 0, h.Stats().SplitCount)
			}
			assertChainInvariants(t, h)
		})
	}
}

func TestSplitRemainderBecomesTail(t *testing.T) {
	h := newTestHeap(t, 4096)

	a, _ := mustAlloc(t, h, 128)
	require.NoError(t, h.Free(a))

	// The freed block is the only (tail) block; splitting it must hand
	// tail status to the remainder.
	_, _, err := h.Alloc(32)
	require.NoError(t, err)

	tail, ok := h.dir.Tail()
	require.True(t, ok)
	assert.Equal(t, uint32(format.HeaderSize+32), tail)
	assertChainInvariants(t, h)
}
