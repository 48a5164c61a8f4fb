// Package backend defines the contract every capture back-end (V4L2,
// DirectShow-style, media-pipeline) implements, plus the error taxonomy and
// tri-valued frame result shared across them.
package backend

import "errors"

// Sentinel errors returned by back-end operations. Callers should compare
// against these with errors.Is, since back-ends wrap them with additional
// context via fmt.Errorf("%w", ...).
var (
	// DeviceUnavailable: path missing, open failed, not a character device,
	// or an index/identifier out of range.
	DeviceUnavailable = errors.New("device unavailable")
	// Unsupported: the device or library lacks a requested capability.
	Unsupported = errors.New("unsupported")
	// InvalidState: an operation was invoked in the wrong lifecycle state.
	InvalidState = errors.New("invalid state")
	// IoError: a kernel/library call failed for a reason other than
	// EAGAIN/EIO/EINTR.
	IoError = errors.New("io error")
	// Timeout: a readiness wait elapsed without a frame becoming available.
	Timeout = errors.New("timeout")
	// Eos: the media-pipeline stream ended.
	Eos = errors.New("end of stream")
	// ConfigError: a malformed pipeline description, missing sink element,
	// or missing plugin.
	ConfigError = errors.New("config error")
	// NoDevice: startSession was called with no device selected and none
	// could be enumerated.
	NoDevice = errors.New("no device")
)
