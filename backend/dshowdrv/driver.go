package dshowdrv

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gocapture/vcapture/backend"
	"github.com/gocapture/vcapture/internal/envconfig"
)

// state mirrors the CLOSED/OPENED/INITIALISED/STREAMING vocabulary the
// V4L2 back-end uses; the wrapped videoInput library has no equivalent
// explicit state machine of its own, so the driver imposes one for
// consistency with the rest of the module.
type state int

const (
	stateClosed state = iota
	stateOpened
	stateInitialised
	stateStreaming
)

const (
	defaultTimeout = 5000 * time.Millisecond
	pollInterval   = 5 * time.Millisecond
)

// Option configures a Driver before Open is called.
type Option func(*Driver)

// WithEnvConfig overrides the environment-derived configuration (normally
// loaded once via envconfig.Load at session construction).
func WithEnvConfig(cfg envconfig.Config) Option {
	return func(d *Driver) { d.env = cfg }
}

// Driver implements backend.Driver against a Windows video-input library.
type Driver struct {
	engine videoInputEngine
	env    envconfig.Config

	state state
	index int

	negotiatedWidth, negotiatedHeight int
	buffer                            []byte

	timeout time.Duration
}

// New constructs a Driver. Options are applied before Open.
func New(opts ...Option) *Driver {
	d := &Driver{
		engine:  newEngine(),
		env:     envconfig.Load(),
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(d)
	}
	d.engine.SetVerbose(d.env.Verbose)
	return d
}

// Open parses identifier (a stringified device index, per device.Device's
// back-end-specific identifier convention) and verifies it names an
// attached device. An identifier that doesn't parse as a plain integer is
// surfaced as DeviceUnavailable rather than silently treated as index 0 —
// spec.md §9's open question resolved in favor of the stricter behavior.
func (d *Driver) Open(identifier string) error {
	if d.state != stateClosed {
		return fmt.Errorf("dshow: open: %w", backend.InvalidState)
	}

	index, err := strconv.Atoi(identifier)
	if err != nil {
		return fmt.Errorf("dshow: open %q: %w", identifier, backend.DeviceUnavailable)
	}
	if index < 0 || index >= d.engine.ListDevices() {
		return fmt.Errorf("dshow: open %q: %w", identifier, backend.DeviceUnavailable)
	}

	d.index = index
	d.state = stateOpened
	return nil
}

// Init sets the ideal framerate (if requested) and negotiates geometry,
// then allocates a caller-side buffer sized to the library-reported frame
// size and records the actual negotiated width/height.
func (d *Driver) Init(requestedWidth, requestedHeight, requestedFps uint32) error {
	if d.state != stateOpened {
		return fmt.Errorf("dshow: init: %w", backend.InvalidState)
	}

	if requestedFps > 0 {
		d.engine.SetIdealFramerate(d.index, int(requestedFps))
	}
	if err := d.engine.SetupDevice(d.index, int(requestedWidth), int(requestedHeight)); err != nil {
		return fmt.Errorf("dshow: init: setup device: %w", backend.Unsupported)
	}
	if !d.engine.IsDeviceSetup(d.index) {
		return fmt.Errorf("dshow: init: %w", backend.Unsupported)
	}

	d.negotiatedWidth = d.engine.Width(d.index)
	d.negotiatedHeight = d.engine.Height(d.index)
	d.buffer = make([]byte, d.engine.Size(d.index))

	d.state = stateInitialised
	return nil
}

// StartCapturing is a no-op: the wrapped library begins delivering frames
// as soon as SetupDevice succeeds, so there is no separate "begin
// streaming" step.
func (d *Driver) StartCapturing() error {
	if d.state != stateInitialised {
		return fmt.Errorf("dshow: start capturing: %w", backend.InvalidState)
	}
	d.state = stateStreaming
	return nil
}

// SetTimeout configures the per-call NextFrame deadline.
func (d *Driver) SetTimeout(t time.Duration) { d.timeout = t }

// NextFrame polls isFrameNew every 5ms up to the configured timeout. On
// the first "new" poll it fetches pixels in BGR order with no flipping.
func (d *Driver) NextFrame() backend.Result {
	if d.state != stateStreaming {
		return backend.ResultError
	}

	deadline := time.Now().Add(d.timeout)
	for {
		if d.engine.IsFrameNew(d.index) {
			if err := d.engine.GetPixels(d.index, d.buffer); err != nil {
				return backend.ResultError
			}
			return backend.OK
		}
		if time.Now().After(deadline) {
			return backend.ResultTimeout
		}
		time.Sleep(pollInterval)
	}
}

// Image returns the most recently captured frame's bytes.
func (d *Driver) Image() []byte { return d.buffer }

// Width returns the negotiated frame width.
func (d *Driver) Width() uint32 { return uint32(d.negotiatedWidth) }

// Height returns the negotiated frame height.
func (d *Driver) Height() uint32 { return uint32(d.negotiatedHeight) }

// StopCapturing releases the device from the library's perspective.
// Idempotent.
func (d *Driver) StopCapturing() error {
	if d.state != stateStreaming {
		return nil
	}
	d.engine.StopDevice(d.index)
	d.state = stateInitialised
	return nil
}

// Uninit releases the buffer allocated by Init.
func (d *Driver) Uninit() error {
	if d.state != stateInitialised {
		return fmt.Errorf("dshow: uninit: %w", backend.InvalidState)
	}
	d.buffer = nil
	d.negotiatedWidth, d.negotiatedHeight = 0, 0
	d.state = stateOpened
	return nil
}

// Close releases the driver's claim on the device index.
func (d *Driver) Close() error {
	if d.state != stateOpened {
		return fmt.Errorf("dshow: close: %w", backend.InvalidState)
	}
	d.state = stateClosed
	return nil
}

var _ backend.Driver = (*Driver)(nil)
