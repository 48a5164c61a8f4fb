//go:build !windows

package pipelinedrv

// positionUnit mirrors the GstFormat values the spec's position properties
// query and seek against: TIME (nanoseconds), DEFAULT (frames), and
// PERCENT (parts-per-GST_FORMAT_PERCENT_MAX).
type positionUnit int

const (
	unitTime positionUnit = iota
	unitDefault
	unitPercent
)

// gstFormatPercentMax is GST_FORMAT_PERCENT_MAX: PERCENT-format queries and
// seeks are expressed as an integer in [0, gstFormatPercentMax].
const gstFormatPercentMax = 1000000

// sinkElement is an opaque native pipeline element. It is a distinct type
// from pipelineElement/sampleHandle only for readability; all three are
// framework-owned pointers the driver never dereferences directly.
type sinkElement = nativeHandle
type pipelineElement = nativeHandle
type sampleHandle = nativeHandle

// nativeHandle is an opaque reference to a framework object (element,
// pipeline, or sample). The real engine implementation backs it with a
// pointer into the C library's object graph; the fake used in tests backs
// it with plain strings and byte slices. Using an interface{} alias here (rather
// than unsafe.Pointer) keeps driver.go buildable without cgo.
type nativeHandle = any

// namedElement pairs a sink element with the name it was instantiated
// with, so findFrameSink can match "appsink"/"opencvsink" by substring the
// way spec.md §4.4 describes for the manual-pipeline path.
type namedElement struct {
	element sinkElement
	name    string
}

// gstEngine is the framework surface the driver needs. The real
// implementation (engine_cgo.go) calls into libgstreamer-1.0 and
// libgstreamer-app-1.0; tests substitute a fake so the state machine and
// property-translation logic in driver.go can be exercised without a
// native toolchain or an attached camera.
type gstEngine interface {
	// Init performs gst_init exactly once per process.
	Init()

	// IsURI and Protocol mirror gst_uri_is_valid / gst_uri_get_protocol.
	IsURI(locator string) bool
	Protocol(locator string) string

	// ParseLaunch builds a pipeline from a graph-expression description
	// (gst_parse_launch) and enumerates its sinks (gst_bin_iterate_sinks).
	ParseLaunch(desc string) (pipeline pipelineElement, sinks []namedElement, err error)

	// BuildURIPipeline constructs an empty pipeline, wires a source for uri
	// (direct construction for v4l2:// URIs, decodebin otherwise),
	// wires decodebin's dynamic pad to a videoconvert (gst_element_link on
	// "pad-added"), and links videoconvert statically to a new appsink.
	BuildURIPipeline(uri string, isV4L2URI bool) (pipeline pipelineElement, sink sinkElement, err error)

	// ConfigureSink sets max-buffers=1, drop-old=isLive, sync pull (no
	// signal emission), and the initial BGR/GRAY8/bayer caps filter.
	ConfigureSink(sink sinkElement, isLive bool)

	// SetState drives the pipeline to PLAYING (playing=true) or NULL
	// (playing=false) and blocks for the transition to complete.
	SetState(pipeline pipelineElement, playing bool) error
	// Stop is SetState(pipeline, false) without the error return, for
	// teardown paths that can't act on a failure.
	Stop(pipeline pipelineElement)

	// IsEOS reports gst_app_sink_is_eos.
	IsEOS(sink sinkElement) bool
	// PullSample is gst_app_sink_pull_sample (synchronous).
	PullSample(sink sinkElement) (sample sampleHandle, ok bool)
	// UnrefSample releases a sample returned by PullSample.
	UnrefSample(sample sampleHandle)
	// MapBuffer maps the sample's buffer read-only, copies its bytes into
	// a caller-owned slice, and unmaps before returning — the pipeline
	// back-end's equivalent of the V4L2 back-end's process_image copy.
	MapBuffer(sample sampleHandle) (data []byte, ok bool)
	// SampleCaps reads width, height, and the framerate fraction off the
	// sample's negotiated caps (gst_sample_get_caps).
	SampleCaps(sample sampleHandle) (width, height, fpsNum, fpsDen int, ok bool)

	// QueryPosition is gst_element_query_position against unit.
	QueryPosition(pipeline pipelineElement, unit positionUnit) (value int64, ok bool)
	// Seek is gst_element_seek_simple with FLUSH|ACCURATE against unit.
	Seek(pipeline pipelineElement, unit positionUnit, value int64) error

	// SetCapsFilter rebuilds the sink's caps filter (gst_caps_make_writable
	// + gst_caps_set_simple) from the given width/height/framerate, where 0
	// means "no filter for this field".
	SetCapsFilter(sink sinkElement, width, height, fpsNum, fpsDen int)

	// QueueLength and SetQueueLength wrap gst_app_sink_get/set_max_buffers.
	QueueLength(sink sinkElement) int
	SetQueueLength(sink sinkElement, n int)
}

// newEngine is overridden by tests to inject a fake; production code gets
// the real cgo-backed engine.
var newEngine = func() gstEngine { return newCgoEngine() }
