//go:build !windows

package dshowdrv

import "errors"

// errNoVideoInput is returned by every stubEngine method that reports
// failure, so on platforms where the videoInput library isn't linked in
// the driver sees a non-nil error and reports Unsupported.
var errNoVideoInput = errors.New("dshowdrv: videoInput library not available on this platform")

// stubEngine implements videoInputEngine without linking the Windows
// "videoInput" library, so the package (and anything importing it) builds
// and its state-machine tests run on non-Windows hosts. Every device
// query reports zero devices; setup always fails.
type stubEngine struct{}

func defaultEngine() videoInputEngine { return &stubEngine{} }

func (e *stubEngine) SetVerbose(verbose bool) {}

func (e *stubEngine) ListDevices() int { return 0 }

func (e *stubEngine) DeviceName(i int) string { return "" }

func (e *stubEngine) SetIdealFramerate(index int, fps int) {}

func (e *stubEngine) SetupDevice(index, width, height int) error { return errNoVideoInput }

func (e *stubEngine) IsDeviceSetup(index int) bool { return false }

func (e *stubEngine) StopDevice(index int) {}

func (e *stubEngine) Width(index int) int  { return 0 }
func (e *stubEngine) Height(index int) int { return 0 }
func (e *stubEngine) Size(index int) int   { return 0 }

func (e *stubEngine) IsFrameNew(index int) bool { return false }

func (e *stubEngine) GetPixels(index int, dst []byte) error { return errNoVideoInput }
