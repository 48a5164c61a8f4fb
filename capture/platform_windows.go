//go:build windows

package capture

import (
	"github.com/gocapture/vcapture/backend"
	"github.com/gocapture/vcapture/backend/dshowdrv"
	"github.com/gocapture/vcapture/device"
)

func defaultNewDriver() backend.Driver {
	return dshowdrv.New()
}

func defaultProbeDevices() (device.DeviceList, error) {
	return dshowdrv.ProbeDevices()
}
