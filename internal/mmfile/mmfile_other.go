//go:build !unix

// Package mmfile provides platform-specific helpers for memory-mapping
// arena image files.
package mmfile

import "os"

// Map reads the entire file when a writable mapping is not available.
// Sync writes the buffer back to the file; cleanup is a no-op.
func Map(path string) ([]byte, func() error, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	sync := func() error {
		return os.WriteFile(path, data, 0o600)
	}
	cleanup := func() error { return nil }
	return data, sync, cleanup, nil
}
