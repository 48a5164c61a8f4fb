// Package capture is the facade & session layer: it selects a back-end
// driver for the running platform, enumerates devices, and exposes the
// small videoDevices/startSession/stopSession/nextFrame/getImage surface
// spec.md §4.5 describes, the way go4vl's device package exposes a single
// entry point (device.Open) over its lower-level v4l2 bindings.
package capture

import (
	"time"

	"github.com/gocapture/vcapture/backend"
	"github.com/gocapture/vcapture/device"
)

// newDriver and probeDevices are platform-selected: platform_linux.go
// wires the V4L2 back-end, platform_windows.go wires the DirectShow-style
// one. Tests substitute both to exercise Grabber without real hardware.
var (
	newDriver    = defaultNewDriver
	probeDevices = defaultProbeDevices
)

// VideoDevices enumerates the capture devices visible to the platform's
// default back-end.
func VideoDevices() (device.DeviceList, error) {
	return probeDevices()
}

// Grabber is a single capture session against one device. The zero value
// is not usable; construct with NewGrabber.
type Grabber struct {
	driver  backend.Driver
	timeout time.Duration
	started bool
}

// NewGrabber constructs a Grabber bound to the platform's default back-end.
// No device is claimed until StartSession is called.
func NewGrabber() *Grabber {
	return &Grabber{driver: newDriver()}
}

// StartSession opens dev (or, if none is given, the first enumerated
// device — NoDevice if enumeration is empty), negotiates width/height, and
// begins streaming. msPerFrame, if positive, is converted to a target
// frame rate of 1000.0/msPerFrame; zero leaves the rate unconstrained. It
// reports false on any failure, mirroring the boolean facade contract;
// callers needing the underlying error should enumerate/Open the back-end
// directly.
func (g *Grabber) StartSession(width, height, msPerFrame uint32, dev ...device.Device) bool {
	identifier, err := g.resolveIdentifier(dev)
	if err != nil {
		return false
	}

	if err := g.driver.Open(identifier); err != nil {
		return false
	}

	var fps uint32
	if msPerFrame > 0 {
		fps = uint32(1000.0 / float64(msPerFrame))
	}
	if err := g.driver.Init(width, height, fps); err != nil {
		g.driver.Close()
		return false
	}
	if g.timeout > 0 {
		g.driver.SetTimeout(g.timeout)
	}
	if err := g.driver.StartCapturing(); err != nil {
		g.driver.Uninit()
		g.driver.Close()
		return false
	}

	g.started = true
	return true
}

func (g *Grabber) resolveIdentifier(dev []device.Device) (string, error) {
	if len(dev) > 0 {
		return dev[0].Identifier(), nil
	}
	list, err := probeDevices()
	if err != nil {
		return "", err
	}
	if list.Size() == 0 {
		return "", backend.NoDevice
	}
	return list.At(0).Identifier(), nil
}

// StopSession reverses StartSession, releasing the device. Safe to call
// even if StartSession was never called or already failed.
func (g *Grabber) StopSession() {
	if !g.started {
		return
	}
	g.driver.StopCapturing()
	g.driver.Uninit()
	g.driver.Close()
	g.started = false
}

// NextFrame blocks for the next frame, bounded by the configured timeout.
func (g *Grabber) NextFrame() backend.Result {
	if !g.started {
		return backend.ResultError
	}
	return g.driver.NextFrame()
}

// GetImage returns the bytes of the most recently captured frame.
func (g *Grabber) GetImage() []byte {
	return g.driver.Image()
}

// GetWidth returns the negotiated frame width.
func (g *Grabber) GetWidth() uint32 { return g.driver.Width() }

// GetHeight returns the negotiated frame height.
func (g *Grabber) GetHeight() uint32 { return g.driver.Height() }

// SetTimeout configures the deadline NextFrame honours. Applied
// immediately if a session is active, and to the next StartSession
// otherwise.
func (g *Grabber) SetTimeout(d time.Duration) {
	g.timeout = d
	if g.started {
		g.driver.SetTimeout(d)
	}
}

// PipelineProperty reads a pipeline-specific property (position, frame
// geometry, fps, queue length) from a Grabber constructed with
// NewPipelineGrabber. It fails with Unsupported if g wasn't built against
// a back-end implementing backend.PropertyDriver.
func (g *Grabber) PipelineProperty(id backend.PropertyID) (float64, error) {
	pd, ok := g.driver.(backend.PropertyDriver)
	if !ok {
		return 0, backend.Unsupported
	}
	return pd.GetProperty(id)
}

// SetPipelineProperty writes a pipeline-specific property. See
// PipelineProperty.
func (g *Grabber) SetPipelineProperty(id backend.PropertyID, value float64) error {
	pd, ok := g.driver.(backend.PropertyDriver)
	if !ok {
		return backend.Unsupported
	}
	return pd.SetProperty(id, value)
}

// unsupportedDriver implements backend.Driver without a device: Open, Init
// and StartCapturing fail with Unsupported, NextFrame reports ResultError,
// the accessors return zero values, and StopCapturing, Uninit and Close
// succeed as no-ops. Used where a back-end named by the facade has no
// implementation on the running platform.
type unsupportedDriver struct{}

func (unsupportedDriver) Open(identifier string) error { return backend.Unsupported }
func (unsupportedDriver) Init(w, h, fps uint32) error  { return backend.Unsupported }
func (unsupportedDriver) StartCapturing() error        { return backend.Unsupported }
func (unsupportedDriver) NextFrame() backend.Result    { return backend.ResultError }
func (unsupportedDriver) Image() []byte                { return nil }
func (unsupportedDriver) Width() uint32                { return 0 }
func (unsupportedDriver) Height() uint32               { return 0 }
func (unsupportedDriver) SetTimeout(d time.Duration)   {}
func (unsupportedDriver) StopCapturing() error         { return nil }
func (unsupportedDriver) Uninit() error                { return nil }
func (unsupportedDriver) Close() error                 { return nil }

var _ backend.Driver = unsupportedDriver{}
