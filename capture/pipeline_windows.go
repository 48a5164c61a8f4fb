//go:build windows

package capture

// NewPipelineGrabber is unavailable on Windows: the media-pipeline
// back-end is built only for !windows (see backend/pipelinedrv). It
// returns a Grabber whose driver cannot open a device: Open, Init and
// StartCapturing fail with Unsupported and NextFrame reports ResultError.
func NewPipelineGrabber() *Grabber {
	return &Grabber{driver: unsupportedDriver{}}
}
