//go:build darwin || linux

package stage

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// hybridRead loads a file's contents, memory-mapping inputs larger
// than mmapThreshold to avoid an extra copy and falling back to a
// single buffered read for small files, where mapping overhead would
// dominate.
func hybridRead(path string, size int64) ([]byte, error) {
	if size <= mmapThreshold {
		return os.ReadFile(path)
	}
	if size == 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer unix.Munmap(data)

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
