package v4l2

import (
	"fmt"
	"time"

	sys "golang.org/x/sys/unix"
)

// WaitForDeviceReady blocks until fd is ready for reading or the given
// timeout elapses, retrying on EINTR. It makes a single bounded wait and
// is meant for a synchronous capture loop that must honor a caller-supplied
// per-call timeout.
func WaitForDeviceReady(fd uintptr, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		tv := sys.NsecToTimeval(remaining.Nanoseconds())
		var fdsRead sys.FdSet
		fdsRead.Set(int(fd))
		n, err := sys.Select(int(fd+1), &fdsRead, nil, nil, &tv)
		if err == sys.EINTR {
			if time.Now().After(deadline) {
				return fmt.Errorf("wait for device ready: %w", ErrorTimeout)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("wait for device ready: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("wait for device ready: %w", ErrorTimeout)
		}
		return nil
	}
}
