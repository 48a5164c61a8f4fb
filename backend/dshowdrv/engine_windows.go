//go:build windows

package dshowdrv

/*
#cgo windows LDFLAGS: -lstrmiids -lole32 -loleaut32
#include <stdlib.h>
#include "bridge_windows.h"
*/
import "C"

import "fmt"

// cgoEngine implements videoInputEngine against the bridged "videoInput"
// library (bridge_windows.cpp / videoInput.h).
type cgoEngine struct{}

func defaultEngine() videoInputEngine { return &cgoEngine{} }

func (e *cgoEngine) SetVerbose(verbose bool) {
	C.dshowdrv_set_verbose(boolToInt(verbose))
}

func (e *cgoEngine) ListDevices() int {
	return int(C.dshowdrv_list_devices())
}

func (e *cgoEngine) DeviceName(i int) string {
	return C.GoString(C.dshowdrv_device_name(C.int(i)))
}

func (e *cgoEngine) SetIdealFramerate(index int, fps int) {
	C.dshowdrv_set_ideal_framerate(C.int(index), C.int(fps))
}

func (e *cgoEngine) SetupDevice(index, width, height int) error {
	if rc := C.dshowdrv_setup_device(C.int(index), C.int(width), C.int(height)); rc != 0 {
		return fmt.Errorf("dshowdrv: setup device %d: rc=%d", index, int(rc))
	}
	return nil
}

func (e *cgoEngine) IsDeviceSetup(index int) bool {
	return C.dshowdrv_is_device_setup(C.int(index)) != 0
}

func (e *cgoEngine) StopDevice(index int) {
	C.dshowdrv_stop_device(C.int(index))
}

func (e *cgoEngine) Width(index int) int  { return int(C.dshowdrv_width(C.int(index))) }
func (e *cgoEngine) Height(index int) int { return int(C.dshowdrv_height(C.int(index))) }
func (e *cgoEngine) Size(index int) int   { return int(C.dshowdrv_size(C.int(index))) }

func (e *cgoEngine) IsFrameNew(index int) bool {
	return C.dshowdrv_is_frame_new(C.int(index)) != 0
}

func (e *cgoEngine) GetPixels(index int, dst []byte) error {
	if len(dst) == 0 {
		return fmt.Errorf("dshowdrv: get pixels %d: empty buffer", index)
	}
	rc := C.dshowdrv_get_pixels(C.int(index), (*C.uchar)(&dst[0]), C.int(len(dst)))
	if rc != 0 {
		return fmt.Errorf("dshowdrv: get pixels %d: rc=%d", index, int(rc))
	}
	return nil
}

func boolToInt(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
