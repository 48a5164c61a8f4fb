//go:build !windows

// Package pipelinedrv implements the media-pipeline back-end: a capture
// driver expressed as a dataflow graph (source → convert → sink) built on
// top of a native multimedia framework, suitable for macOS and Linux when
// the kernel V4L2 path is unavailable or when the caller wants to capture
// from a URI, file, or hand-written pipeline description instead of a
// device node.
//
// The package is split the way the v4l2/backend.v4l2drv pair is split: a
// thin gstEngine interface describes the framework calls the driver needs
// (gst_parse_launch, gst_bin_iterate_sinks, gst_app_sink_pull_sample, and
// so on), a cgo-backed implementation in engine_cgo.go satisfies it against
// libgstreamer-1.0/libgstreamer-app-1.0, and driver.go holds the pipeline
// state machine and property translation logic against the interface so it
// can be exercised in tests without a native toolchain.
//
// Not supported on Windows. The whole package carries a !windows build
// constraint; github.com/gocapture/vcapture/capture supplies the stub
// constructor that keeps the facade building there.
package pipelinedrv
