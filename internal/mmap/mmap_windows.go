//go:build windows

package mmap

import (
	"io"
	"os"
)

// Windows fallback: read the whole file instead of mapping it. Fragment blobs
// are bounded by the tile size, so this stays within the read memory budget.
func mapFile(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func unmapFile(data []byte) error {
	return nil
}
