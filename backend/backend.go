package backend

import "time"

// Result is the public tri-valued outcome of a NextFrame call, mirroring
// the facade's nextFrame() -> {OK|Timeout|Error} contract.
type Result int

const (
	// OK indicates a frame was captured and is available via the driver's
	// current frame accessor.
	OK Result = 1
	// ResultTimeout indicates the readiness wait elapsed with no frame.
	ResultTimeout Result = -1
	// ResultError indicates any other failure, including end-of-stream for
	// the media-pipeline back-end.
	ResultError Result = -2
)

// Driver is the uniform contract a capture back-end presents to a Session.
// The V4L2, DirectShow-style, and media-pipeline back-ends each implement
// it, even though their internal state machines differ: the pipeline
// back-end's StartCapturing is a no-op because it starts lazily on the
// first NextFrame, and its SetTimeout is a no-op because its readiness is
// driven by the sink rather than a caller timeout.
type Driver interface {
	// Open claims the named device/identifier. Fails with DeviceUnavailable
	// if it cannot be reached.
	Open(identifier string) error
	// Init negotiates geometry and frame rate and allocates buffers.
	// requestedFps of 0 leaves the rate unconstrained.
	Init(requestedWidth, requestedHeight, requestedFps uint32) error
	// StartCapturing transitions the driver into its streaming state.
	StartCapturing() error
	// NextFrame blocks (bounded by the configured timeout) for one frame.
	NextFrame() Result
	// Image returns the most recently captured frame's bytes. The slice is
	// valid until the next NextFrame, StopCapturing, or Close call.
	Image() []byte
	// Width and Height return the negotiated geometry, which may differ
	// from what was requested.
	Width() uint32
	Height() uint32
	// SetTimeout configures the per-call NextFrame deadline.
	SetTimeout(d time.Duration)
	// StopCapturing reverses StartCapturing. Idempotent.
	StopCapturing() error
	// Uninit releases buffers allocated by Init.
	Uninit() error
	// Close releases the underlying device handle.
	Close() error
}
