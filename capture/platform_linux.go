//go:build linux

package capture

import (
	"github.com/gocapture/vcapture/backend"
	"github.com/gocapture/vcapture/backend/v4l2drv"
	"github.com/gocapture/vcapture/device"
)

func defaultNewDriver() backend.Driver {
	return v4l2drv.New()
}

func defaultProbeDevices() (device.DeviceList, error) {
	return v4l2drv.ProbeDevices()
}
