package v4l2

import (
	"fmt"

	sys "golang.org/x/sys/unix"
)

// AllocUserBuffer allocates a single page-aligned buffer of the given size
// for V4L2_MEMORY_USERPTR streaming. The kernel requires user-pointer
// buffers to be page-aligned; Go's allocator gives no such guarantee, so
// this uses an anonymous private mmap as a page-aligned-allocation
// substitute for posix_memalign.
func AllocUserBuffer(size int) ([]byte, error) {
	buf, err := sys.Mmap(-1, 0, size, sys.PROT_READ|sys.PROT_WRITE, sys.MAP_PRIVATE|sys.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("alloc user buffer: %w", err)
	}
	return buf, nil
}

// FreeUserBuffer releases a buffer allocated by AllocUserBuffer.
func FreeUserBuffer(buf []byte) error {
	if err := sys.Munmap(buf); err != nil {
		return fmt.Errorf("free user buffer: %w", err)
	}
	return nil
}

// AllocUserBuffers allocates count page-aligned buffers of the given size,
// freeing any already-allocated buffers if a later allocation fails.
func AllocUserBuffers(count int, size int) ([][]byte, error) {
	buffers := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		buf, err := AllocUserBuffer(size)
		if err != nil {
			for _, b := range buffers {
				_ = FreeUserBuffer(b)
			}
			return nil, fmt.Errorf("alloc user buffers: buffer %d: %w", i, err)
		}
		buffers = append(buffers, buf)
	}
	return buffers, nil
}

// FreeUserBuffers releases every buffer in buffers, returning the first
// error encountered (if any) after attempting to free them all.
func FreeUserBuffers(buffers [][]byte) error {
	var firstErr error
	for i, b := range buffers {
		if b == nil {
			continue
		}
		if err := FreeUserBuffer(b); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("free user buffers: buffer %d: %w", i, err)
		}
	}
	return firstErr
}
