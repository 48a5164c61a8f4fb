package v4l2

// #include <linux/videodev2.h>
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	sys "golang.org/x/sys/unix"
)

// InputStatus (v4l2_input status bits)
// https://linuxtv.org/downloads/v4l-dvb-apis/userspace-api/v4l/vidioc-enuminput.html#input-status
type InputStatus = uint32

var (
	InputStatusNoPower  InputStatus = C.V4L2_IN_ST_NO_POWER
	InputStatusNoSignal InputStatus = C.V4L2_IN_ST_NO_SIGNAL
	InputStatusNoColor  InputStatus = C.V4L2_IN_ST_NO_COLOR
)

// InputType identifies the kind of signal a video input accepts.
type InputType = uint32

const (
	InputTypeTuner InputType = iota + 1
	InputTypeCamera
	InputTypeTouch
)

// InputInfo (v4l2_input) describes one of a device's selectable video
// inputs, as reported by VIDIOC_ENUMINPUT.
// https://elixir.bootlin.com/linux/latest/source/include/uapi/linux/videodev2.h#L1649
type InputInfo struct {
	Index        uint32
	Name         string
	Type         InputType
	Audioset     uint32
	Tuner        uint32
	StandardID   uint64
	Status       uint32
	Capabilities uint32
}

// GetCurrentVideoInputIndex returns the index of the device's currently
// selected video input (VIDIOC_G_INPUT). This is a read-only diagnostic
// accessor; the driver relies on a single default input for capture.
func GetCurrentVideoInputIndex(fd uintptr) (int32, error) {
	var index C.int
	if err := send(fd, C.VIDIOC_G_INPUT, uintptr(unsafe.Pointer(&index))); err != nil {
		return -1, fmt.Errorf("video input get: %w", err)
	}
	return int32(index), nil
}

// GetVideoInputInfo returns the description for the video input at index
// (VIDIOC_ENUMINPUT).
func GetVideoInputInfo(fd uintptr, index uint32) (InputInfo, error) {
	var input C.struct_v4l2_input
	input.index = C.uint(index)
	if err := send(fd, C.VIDIOC_ENUMINPUT, uintptr(unsafe.Pointer(&input))); err != nil {
		return InputInfo{}, fmt.Errorf("video input info: index %d: %w", index, err)
	}
	return InputInfo{
		Index:        uint32(input.index),
		Name:         C.GoString((*C.char)(unsafe.Pointer(&input.name[0]))),
		Type:         InputType(input._type),
		Audioset:     uint32(input.audioset),
		Tuner:        uint32(input.tuner),
		StandardID:   uint64(input.std),
		Status:       uint32(input.status),
		Capabilities: uint32(input.capabilities),
	}, nil
}

// GetAllVideoInputInfo enumerates every video input by index, starting at
// 0, until VIDIOC_ENUMINPUT reports EINVAL (the usual end-of-list signal).
func GetAllVideoInputInfo(fd uintptr) ([]InputInfo, error) {
	var result []InputInfo
	for index := uint32(0); ; index++ {
		info, err := GetVideoInputInfo(fd, index)
		if err != nil {
			if errors.Is(err, sys.EINVAL) && len(result) > 0 {
				break
			}
			return result, fmt.Errorf("all video input info: %w", err)
		}
		result = append(result, info)
	}
	return result, nil
}
