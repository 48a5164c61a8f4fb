//go:build !windows

package pipelinedrv

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocapture/vcapture/backend"
)

// state is the driver's position in the NULL/READY/PLAYING pipeline
// lifecycle described in spec.md §4.4, folded into the same
// CLOSED/OPENED/INITIALISED/STREAMING vocabulary the V4L2 back-end uses so
// the two back-ends read the same way at the call site.
type state int

const (
	stateClosed state = iota
	stateOpened
	stateInitialised
	stateStreaming
)

// Driver implements backend.Driver and backend.PropertyDriver against a
// GStreamer-style dataflow graph.
type Driver struct {
	engine gstEngine

	state state

	locator        string
	manualPipeline bool
	isV4L2URI      bool

	pipeline pipelineElement
	sink     sinkElement

	currentSample sampleHandle
	rgbBuffer     []byte

	haveFrame              bool
	lastWidth, lastHeight  int
	lastFpsNum, lastFpsDen int
	capsWidth, capsHeight  int
	capsFpsNum, capsFpsDen int
	queueLength            int
}

// New constructs a Driver. The timeout parameter of backend.Driver has no
// effect here: the pipeline's readiness is driven by the sink's internal
// wait, not a caller-supplied deadline (spec.md §4.5).
func New() *Driver {
	return &Driver{engine: newEngine(), queueLength: 1}
}

// Open resolves identifier to a locator per spec.md §4.4: a valid URI is
// used as-is; a resolvable filesystem path is converted to a file:// URI;
// otherwise identifier is parsed as a pipeline description, and on success
// the driver is marked manualPipeline and its graph is built immediately
// (parsing a description is constructing it).
func (d *Driver) Open(identifier string) error {
	if d.state != stateClosed {
		return fmt.Errorf("pipeline: open: %w", backend.InvalidState)
	}
	d.engine.Init()

	switch {
	case d.engine.IsURI(identifier):
		d.locator = identifier
		d.isV4L2URI = d.engine.Protocol(identifier) == "v4l2"

	default:
		if info, err := os.Stat(identifier); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(identifier)
			if err != nil {
				abs = identifier
			}
			d.locator = "file://" + abs
			break
		}

		pipeline, sinks, err := d.engine.ParseLaunch(identifier)
		if err != nil {
			return fmt.Errorf("pipeline: open %q: %w", identifier, backend.ConfigError)
		}
		sink := findFrameSink(sinks)
		if sink == nil {
			return fmt.Errorf("pipeline: open %q: no appsink/opencvsink element: %w", identifier, backend.ConfigError)
		}
		d.manualPipeline = true
		d.pipeline = pipeline
		d.sink = sink
	}

	d.state = stateOpened
	return nil
}

// findFrameSink returns the first sink whose name contains "appsink" or
// "opencvsink", per spec.md §4.4's manual-pipeline construction rule.
func findFrameSink(sinks []namedElement) sinkElement {
	for _, s := range sinks {
		name := strings.ToLower(s.name)
		if strings.Contains(name, "appsink") || strings.Contains(name, "opencvsink") {
			return s.element
		}
	}
	return nil
}

// Init builds the URI pipeline (the manual pipeline was already built by
// Open), configures the app-sink, and records the caller's requested
// geometry/rate as initial caps filters.
func (d *Driver) Init(requestedWidth, requestedHeight, requestedFps uint32) error {
	if d.state != stateOpened {
		return fmt.Errorf("pipeline: init: %w", backend.InvalidState)
	}

	if !d.manualPipeline {
		pipeline, sink, err := d.engine.BuildURIPipeline(d.locator, d.isV4L2URI)
		if err != nil {
			return fmt.Errorf("pipeline: init: %w: %v", backend.ConfigError, err)
		}
		d.pipeline, d.sink = pipeline, sink
	}

	d.engine.ConfigureSink(d.sink, d.isV4L2URI)

	if requestedWidth != 0 {
		d.capsWidth = int(requestedWidth)
	}
	if requestedHeight != 0 {
		d.capsHeight = int(requestedHeight)
	}
	if requestedFps != 0 {
		d.capsFpsNum, d.capsFpsDen = int(requestedFps), 1
	}
	d.applyCapsFilter()

	d.state = stateInitialised
	return nil
}

func (d *Driver) applyCapsFilter() {
	d.engine.SetCapsFilter(d.sink, d.capsWidth, d.capsHeight, d.capsFpsNum, d.capsFpsDen)
}

// StartCapturing is a no-op: the pipeline starts lazily on the first
// NextFrame call, per spec.md §4.4 ("nextFrame starts the pipeline lazily
// on first call").
func (d *Driver) StartCapturing() error {
	if d.state != stateInitialised {
		return fmt.Errorf("pipeline: start capturing: %w", backend.InvalidState)
	}
	return nil
}

// SetTimeout is a no-op for the pipeline back-end: its readiness is driven
// by the framework's internal synchronous pull, not a caller deadline.
func (d *Driver) SetTimeout(time.Duration) {}

// NextFrame starts the pipeline on first call, checks for end-of-stream,
// releases the previous sample, and pulls exactly one new sample.
func (d *Driver) NextFrame() backend.Result {
	if d.state != stateInitialised && d.state != stateStreaming {
		return backend.ResultError
	}

	if d.state == stateInitialised {
		if err := d.engine.SetState(d.pipeline, true); err != nil {
			return backend.ResultError
		}
		d.state = stateStreaming
	}

	if d.engine.IsEOS(d.sink) {
		return backend.ResultError
	}

	if d.currentSample != nil {
		d.engine.UnrefSample(d.currentSample)
		d.currentSample = nil
	}

	sample, ok := d.engine.PullSample(d.sink)
	if !ok {
		return backend.ResultError
	}
	d.currentSample = sample

	data, ok := d.engine.MapBuffer(sample)
	if !ok {
		d.engine.UnrefSample(sample)
		d.currentSample = nil
		return backend.ResultError
	}
	d.processImage(data)

	if w, h, fn, fd, ok := d.engine.SampleCaps(sample); ok {
		d.lastWidth, d.lastHeight, d.lastFpsNum, d.lastFpsDen = w, h, fn, fd
		d.haveFrame = true
	}

	return backend.OK
}

// processImage copies frame into rgbBuffer, reallocating only when the
// byte length changes — the same stable-pointer discipline the V4L2
// back-end's process_image uses, applied here so a pipeline caller gets
// the same "pointer stable until the frame size changes" guarantee.
func (d *Driver) processImage(frame []byte) {
	if len(d.rgbBuffer) != len(frame) {
		d.rgbBuffer = make([]byte, len(frame))
	}
	copy(d.rgbBuffer, frame)
}

// Image returns the most recently captured frame's bytes.
func (d *Driver) Image() []byte { return d.rgbBuffer }

// Width returns the negotiated width, or 0 if no frame has been pulled yet
// (spec.md §4.4: "Size-dependent getters require at least one frame").
func (d *Driver) Width() uint32 {
	if !d.haveFrame {
		return 0
	}
	return uint32(d.lastWidth)
}

// Height mirrors Width.
func (d *Driver) Height() uint32 {
	if !d.haveFrame {
		return 0
	}
	return uint32(d.lastHeight)
}

// StopCapturing drives the pipeline back to NULL. Idempotent.
func (d *Driver) StopCapturing() error {
	if d.state != stateStreaming {
		return nil
	}
	d.engine.Stop(d.pipeline)
	if d.currentSample != nil {
		d.engine.UnrefSample(d.currentSample)
		d.currentSample = nil
	}
	d.state = stateInitialised
	return nil
}

// Uninit releases the pipeline reference built by Init.
func (d *Driver) Uninit() error {
	if d.state != stateInitialised {
		return fmt.Errorf("pipeline: uninit: %w", backend.InvalidState)
	}
	d.pipeline = nil
	d.sink = nil
	d.rgbBuffer = nil
	d.haveFrame = false
	d.state = stateOpened
	return nil
}

// Close marks the driver closed. There is no native handle left to release
// once Uninit has run; closing a manual pipeline whose graph was built by
// Open (and never Init'd) simply drops the reference.
func (d *Driver) Close() error {
	if d.state != stateOpened {
		return fmt.Errorf("pipeline: close: %w", backend.InvalidState)
	}
	d.pipeline = nil
	d.sink = nil
	d.state = stateClosed
	return nil
}

// GetProperty implements backend.PropertyDriver.
func (d *Driver) GetProperty(id backend.PropertyID) (float64, error) {
	switch id {
	case backend.PosMsec:
		ns, ok := d.engine.QueryPosition(d.pipeline, unitTime)
		if !ok {
			return 0, nil
		}
		return float64(ns) / float64(time.Millisecond), nil

	case backend.PosFrames:
		frames, ok := d.engine.QueryPosition(d.pipeline, unitDefault)
		if !ok {
			return 0, nil
		}
		return float64(frames), nil

	case backend.PosAviRatio:
		pct, ok := d.engine.QueryPosition(d.pipeline, unitPercent)
		if !ok {
			return 0, nil
		}
		return float64(pct) / float64(gstFormatPercentMax), nil

	case backend.FrameWidth:
		if !d.haveFrame {
			return 0, backend.ErrNoFrameYet
		}
		return float64(d.lastWidth), nil

	case backend.FrameHeight:
		if !d.haveFrame {
			return 0, backend.ErrNoFrameYet
		}
		return float64(d.lastHeight), nil

	case backend.Fps:
		if !d.haveFrame || d.lastFpsDen == 0 {
			return 0, backend.ErrNoFrameYet
		}
		return float64(d.lastFpsNum) / float64(d.lastFpsDen), nil

	case backend.QueueLength:
		return float64(d.engine.QueueLength(d.sink)), nil

	default:
		return 0, fmt.Errorf("pipeline: get property %d: %w", id, backend.ConfigError)
	}
}

// SetProperty implements backend.PropertyDriver. Seeks use FLUSH|ACCURATE
// (encoded in the engine implementation); caps-affecting sets restart the
// pipeline if it is currently playing.
func (d *Driver) SetProperty(id backend.PropertyID, value float64) error {
	switch id {
	case backend.PosMsec:
		return d.engine.Seek(d.pipeline, unitTime, int64(value*float64(time.Millisecond)))

	case backend.PosFrames:
		return d.engine.Seek(d.pipeline, unitDefault, int64(value))

	case backend.PosAviRatio:
		return d.engine.Seek(d.pipeline, unitPercent, int64(value*float64(gstFormatPercentMax)))

	case backend.FrameWidth:
		d.capsWidth = positiveInt(value)
		return d.restartWithNewCaps()

	case backend.FrameHeight:
		d.capsHeight = positiveInt(value)
		return d.restartWithNewCaps()

	case backend.Fps:
		d.capsFpsNum, d.capsFpsDen = approximateFraction(value, 0.001)
		return d.restartWithNewCaps()

	case backend.QueueLength:
		d.queueLength = int(value)
		d.engine.SetQueueLength(d.sink, d.queueLength)
		return nil

	default:
		return fmt.Errorf("pipeline: set property %d: %w", id, backend.ConfigError)
	}
}

func positiveInt(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(v)
}

// restartWithNewCaps applies the current caps filter and, if the pipeline
// is playing, briefly stops and restarts it — spec.md §4.4: "Property-set
// operations that mutate caps briefly stop and restart the pipeline."
func (d *Driver) restartWithNewCaps() error {
	d.applyCapsFilter()
	if d.state != stateStreaming {
		return nil
	}
	d.engine.Stop(d.pipeline)
	if err := d.engine.SetState(d.pipeline, true); err != nil {
		return fmt.Errorf("pipeline: restart after property set: %w", backend.IoError)
	}
	return nil
}

// approximateFraction finds the smallest-denominator num/den (den <= 1000)
// within tolerance of value, per spec.md §4.4's FPS property: "framerate
// filter (numerator/denominator derived by fraction-approximation of the
// decimal value within 0.001)".
func approximateFraction(value, tolerance float64) (num, den int) {
	for d := 1; d <= 1000; d++ {
		n := int(math.Round(value * float64(d)))
		if math.Abs(float64(n)/float64(d)-value) < tolerance {
			return n, d
		}
	}
	return int(math.Round(value * 1000)), 1000
}
