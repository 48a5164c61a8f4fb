package v4l2drv

import (
	"fmt"

	sys "golang.org/x/sys/unix"

	"github.com/gocapture/vcapture/device"
)

// maxProbedDevices bounds the V4L2 probe's candidate path scan to
// /dev/video0 through /dev/video{maxProbedDevices-1}.
const maxProbedDevices = 16

// isDevice and candidatePath are broken out as variables so tests can probe
// a fake filesystem/path scheme without touching /dev.
var (
	isDevice      = device.IsDevice
	candidatePath = func(i int) string { return fmt.Sprintf("/dev/video%d", i) }
)

// ProbeDevices iterates candidate /dev/videoN paths (N in [0, 16)). For
// each path that exists, it opens read-only and issues QUERYCAP, keeping
// the device only if it reports the video-capture capability bit. Any
// per-device error (missing path, open failure, non-capture device) is
// absorbed and that candidate is skipped.
func ProbeDevices() (device.DeviceList, error) {
	var found []device.Device

	for i := 0; i < maxProbedDevices; i++ {
		path := candidatePath(i)

		ok, err := isDevice(path)
		if err != nil || !ok {
			continue
		}

		fd, err := openDevice(path, sys.O_RDONLY, 0)
		if err != nil {
			continue
		}

		cap, err := getCapability(fd)
		_ = closeDeviceFn(fd)
		if err != nil {
			continue
		}
		if !cap.IsVideoCaptureSupported() {
			continue
		}

		found = append(found, device.New(cap.Card, path))
	}

	return device.NewDeviceList(found), nil
}
