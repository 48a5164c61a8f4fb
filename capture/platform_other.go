//go:build !windows && !linux

package capture

import (
	"github.com/gocapture/vcapture/backend"
	"github.com/gocapture/vcapture/backend/pipelinedrv"
	"github.com/gocapture/vcapture/device"
)

// On platforms with neither V4L2 nor the DirectShow-style library (macOS,
// other Unix), the media-pipeline back-end is the only one available, so
// it is the default. Device enumeration has no equivalent here: the
// pipeline back-end is driven by a URI/pipeline description rather than
// an enumerated index, so ProbeDevices always reports an empty list.
func defaultNewDriver() backend.Driver {
	return pipelinedrv.New()
}

func defaultProbeDevices() (device.DeviceList, error) {
	return device.NewDeviceList(nil), nil
}
