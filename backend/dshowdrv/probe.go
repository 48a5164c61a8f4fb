package dshowdrv

import (
	"strconv"

	"github.com/gocapture/vcapture/device"
)

// ProbeDevices delegates to the wrapped library's device count, reading
// back each device's name and forming (name, stringified index) pairs —
// the identifier a later Open call parses back into an index.
func ProbeDevices() (device.DeviceList, error) {
	engine := newEngine()
	engine.SetVerbose(false)

	count := engine.ListDevices()
	devices := make([]device.Device, 0, count)
	for i := 0; i < count; i++ {
		devices = append(devices, device.New(engine.DeviceName(i), strconv.Itoa(i)))
	}
	return device.NewDeviceList(devices), nil
}
