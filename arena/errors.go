package arena

import "errors"

var (
	// ErrArenaFull indicates that an extension requires more capacity than
	// remains in the fixed arena.
	ErrArenaFull = errors.New("arena: capacity exceeded")

	// ErrCorrupt indicates an image whose header chain cannot be walked.
	ErrCorrupt = errors.New("arena: corrupt block directory")
)
