package v4l2

/*
#cgo linux CFLAGS: -I ${SRCDIR}/../include/
#include <linux/videodev2.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Capability constants used by the capture-only driver: whether a device
// supports the single-planar capture API, streaming (mmap/user-pointer)
// I/O, or plain read()/write() I/O. The V4L2 capability bitmask also
// defines tuner, audio, VBI, radio, SDR, touch, and multi-planar bits;
// this module never negotiates any of those surfaces, so only the bits
// the I/O-method selection and device probe actually test are named here.
//
// Reference: https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/videodev2.h#L451
const (
	// CapVideoCapture indicates the device supports video capture via the
	// single-planar API. This is the capability the device probe and
	// Init both require.
	CapVideoCapture uint32 = C.V4L2_CAP_VIDEO_CAPTURE

	// CapReadWrite indicates support for read() and write() I/O methods.
	CapReadWrite uint32 = C.V4L2_CAP_READWRITE

	// CapStreaming indicates support for streaming I/O using memory
	// mapping or user pointers. Init's I/O-method selection picks mmap
	// over read when this bit is set.
	CapStreaming uint32 = C.V4L2_CAP_STREAMING
)

// Capability represents the identification and capability information of
// a V4L2 device, as returned by VIDIOC_QUERYCAP.
//
// Reference: https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-querycap.html
type Capability struct {
	// Driver is the name of the driver module (e.g., "uvcvideo" for USB cameras).
	Driver string

	// Card is a human-readable name of the device (e.g., "HD Webcam C920").
	// The device probe uses this as the Device name.
	Card string

	// BusInfo describes the device's bus connection (e.g., "usb-0000:00:14.0-1").
	BusInfo string

	// Capabilities is the bitmask of capabilities this driver reports.
	Capabilities uint32
}

// GetCapability queries the V4L2 device for its capabilities and
// identification information via VIDIOC_QUERYCAP.
func GetCapability(fd uintptr) (Capability, error) {
	var v4l2Cap C.struct_v4l2_capability
	if err := send(fd, C.VIDIOC_QUERYCAP, uintptr(unsafe.Pointer(&v4l2Cap))); err != nil {
		return Capability{}, fmt.Errorf("capability: %w", err)
	}
	return Capability{
		Driver:       C.GoString((*C.char)(unsafe.Pointer(&v4l2Cap.driver[0]))),
		Card:         C.GoString((*C.char)(unsafe.Pointer(&v4l2Cap.card[0]))),
		BusInfo:      C.GoString((*C.char)(unsafe.Pointer(&v4l2Cap.bus_info[0]))),
		Capabilities: uint32(v4l2Cap.capabilities),
	}, nil
}

// IsVideoCaptureSupported checks if the device supports video capture via
// the single-planar API.
func (c Capability) IsVideoCaptureSupported() bool {
	return c.Capabilities&CapVideoCapture != 0
}

// IsReadWriteSupported checks if the device supports read() and write()
// I/O methods.
func (c Capability) IsReadWriteSupported() bool {
	return c.Capabilities&CapReadWrite != 0
}

// IsStreamingSupported checks if the device supports streaming I/O
// (memory mapping or user pointers).
func (c Capability) IsStreamingSupported() bool {
	return c.Capabilities&CapStreaming != 0
}
