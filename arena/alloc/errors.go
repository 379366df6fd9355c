package alloc

import "errors"

var (
	// ErrZeroSize indicates an allocation request for zero (or negative) bytes.
	ErrZeroSize = errors.New("alloc: zero-size request")

	// ErrBadRef indicates a handle that is out of arena bounds or not a
	// recognized payload start. The operation is a no-op.
	ErrBadRef = errors.New("alloc: bad payload reference")

	// ErrSizeOverflow indicates that count*elemSize overflowed in AllocZeroed.
	ErrSizeOverflow = errors.New("alloc: size multiplication overflow")
)
