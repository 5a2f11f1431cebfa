//go:build windows

package mmap

import (
	"io"
	"os"
)

// Windows gets a plain read fallback. The toolkit targets the POSIX
// hosts simulation clusters run on; correctness elsewhere is enough.
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
