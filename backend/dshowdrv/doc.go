// Package dshowdrv implements the DirectShow-style back-end: a thin Go
// wrapper around a Windows video-input library that already encapsulates
// device enumeration, format setup, frame-availability polling, and pixel
// retrieval in BGR order.
//
// The package follows the split used by the rest of the module:
// videoInputEngine is the interface describing the library calls the driver needs
// (listDevices, setupDevice, isFrameNew, getPixels, ...), a cgo-backed
// implementation in engine_windows.go wraps the "videoInput" DirectShow
// library the way original_source/.../OpenIMAJGrabber.cpp does, and
// driver.go holds the timeout loop and buffer-ownership logic against the
// interface so it is exercisable in tests on any platform.
//
// The device-backing functionality is Windows-only; see engine_stub.go
// for the non-Windows implementation that keeps the rest of the module
// building and testable elsewhere.
package dshowdrv
