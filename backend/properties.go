package backend

import "errors"

// PropertyID names one entry in the media-pipeline back-end's property
// namespace (spec.md §4.4). Only the pipeline back-end implements
// PropertyDriver; the V4L2 and DirectShow-style back-ends have no
// equivalent concept of mid-stream properties.
type PropertyID int

const (
	// PosMsec is the stream position in milliseconds.
	PosMsec PropertyID = iota
	// PosFrames is the stream position in frames.
	PosFrames
	// PosAviRatio is the stream position as a ratio in [0, 1].
	PosAviRatio
	// FrameWidth is the negotiated frame width, read from the last pulled
	// buffer's caps; setting it adds/removes a width filter on the sink.
	FrameWidth
	// FrameHeight mirrors FrameWidth for height.
	FrameHeight
	// Fps is the negotiated framerate, read as a fraction from the last
	// buffer's caps; setting it adds a framerate filter.
	Fps
	// QueueLength is the app-sink's max-buffers setting.
	QueueLength
)

// ErrNoFrameYet is returned by a size-dependent property getter (FrameWidth,
// FrameHeight, Fps) when queried before any frame has been pulled, per
// spec.md §4.4: "Size-dependent getters require at least one frame to have
// been pulled; without one, return 0 with a warning." Callers that want the
// warning log it themselves; the library stays silent.
var ErrNoFrameYet = errors.New("no frame pulled yet")

// PropertyDriver is implemented by back-ends that expose the pipeline
// property namespace. Callers type-assert a Driver against this interface
// rather than the facade hard-coding pipeline-specific behavior.
type PropertyDriver interface {
	Driver
	// GetProperty reads the current value for id. It returns ErrNoFrameYet
	// for a size-dependent id queried before the first frame.
	GetProperty(id PropertyID) (float64, error)
	// SetProperty mutates the pipeline to reflect value for id. Property
	// sets that touch caps may briefly stop and restart the pipeline.
	SetProperty(id PropertyID, value float64) error
}
