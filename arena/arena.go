package arena

import (
	"fmt"
	"os"

	"github.com/Freeze777/heapkit/internal/mmfile"
)

// DefaultCapacity is the arena capacity used when none is specified (64 KiB).
const DefaultCapacity = 1 << 16

// maxCapacity bounds the arena size so every offset fits in an int32/uint32
// reference with room for the InvalidRef sentinel.
const maxCapacity = 1<<31 - 1

// Arena is a fixed-capacity byte region. It is created once, never resized,
// and owns nothing beyond its buffer and (for image-backed arenas) the
// mapping lifecycle.
type Arena struct {
	data  []byte
	sync  func() error
	unmap func() error
}

// New creates an anonymous in-memory arena. If capacity <= 0,
// DefaultCapacity is used.
func New(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > maxCapacity {
		capacity = maxCapacity
	}
	return &Arena{data: make([]byte, capacity)}
}

// Create writes a zeroed image file of the given capacity and maps it as
// the arena backing store. If capacity <= 0, DefaultCapacity is used.
func Create(path string, capacity int) (*Arena, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > maxCapacity {
		return nil, fmt.Errorf("arena: capacity %d too large", capacity)
	}
	if err := os.WriteFile(path, make([]byte, capacity), 0o600); err != nil {
		return nil, fmt.Errorf("arena: create image: %w", err)
	}
	return Open(path)
}

// Open maps an existing arena image file as the backing store. The file
// size is the arena capacity.
func Open(path string) (*Arena, error) {
	data, sync, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("arena: open image: %w", err)
	}
	if len(data) == 0 {
		_ = unmap()
		return nil, fmt.Errorf("arena: empty image %q", path)
	}
	return &Arena{data: data, sync: sync, unmap: unmap}, nil
}

// Bytes returns the raw arena buffer. The slice aliases the backing store;
// callers must not retain sub-slices across a Close.
func (a *Arena) Bytes() []byte { return a.data }

// Capacity returns the fixed arena size in bytes.
func (a *Arena) Capacity() int { return len(a.data) }

// Flush writes an image-backed arena to disk (msync). It is a no-op for
// in-memory arenas.
func (a *Arena) Flush() error {
	if a.sync == nil {
		return nil
	}
	return a.sync()
}

// Close releases the mapping of an image-backed arena. The arena must not
// be used afterwards. Closing an in-memory arena is a no-op.
func (a *Arena) Close() error {
	if a.unmap == nil {
		return nil
	}
	err := a.unmap()
	a.data = nil
	a.sync = nil
	a.unmap = nil
	return err
}
