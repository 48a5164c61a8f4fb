package v4l2

import (
	"fmt"

	sys "golang.org/x/sys/unix"
)

// ReadFrame performs plain read(2) I/O capture, for devices that advertise
// CapReadWrite but not CapStreaming. buf must be sized at least as large as
// the negotiated format's SizeImage; the number of bytes actually read is
// returned. This path bypasses buffer queueing entirely: each call issues
// one read(2) against the device node; on a non-blocking fd with no frame
// ready it returns ErrorTemporary wrapping EAGAIN.
func ReadFrame(fd uintptr, buf []byte) (int, error) {
	n, err := sys.Read(int(fd), buf)
	if err != nil {
		if err == sys.EINTR || err == sys.EAGAIN {
			return 0, fmt.Errorf("read frame: %w: %w", ErrorTemporary, err)
		}
		return 0, fmt.Errorf("read frame: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("read frame: %w", ErrorSystem)
	}
	return n, nil
}

// WriteFrame writes a single frame to a video output device opened for
// read/write I/O.
func WriteFrame(fd uintptr, buf []byte) (int, error) {
	n, err := sys.Write(int(fd), buf)
	if err != nil {
		return 0, fmt.Errorf("write frame: %w", err)
	}
	return n, nil
}
