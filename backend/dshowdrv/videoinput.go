package dshowdrv

// videoInputEngine is the surface spec.md §6 requires of the wrapped
// library: listDevices, getDeviceName(i), setupDevice(i,w,h),
// isDeviceSetup, isFrameNew, getPixels, stopDevice, setIdealFramerate,
// getWidth, getHeight, getSize, plus the static setVerbose toggle.
//
// engine_windows.go implements it against the "videoInput" DirectShow
// wrapper library (the same one original_source/.../OpenIMAJGrabber.cpp
// links); engine_stub.go implements it everywhere else so the package
// builds and the rest of the module's CI runs on non-Windows hosts.
type videoInputEngine interface {
	// SetVerbose toggles the library's own logging, mirroring
	// videoInput::setVerbose. Called once at driver construction from
	// envconfig.Config.Verbose (OPENIMAJ_GRABBER_VERBOSE).
	SetVerbose(verbose bool)

	// ListDevices returns the number of attached capture devices.
	ListDevices() int
	// DeviceName returns the display name of the device at index i.
	DeviceName(i int) string

	// SetIdealFramerate requests a target frame rate for the device at
	// index. The library is not guaranteed to honor it.
	SetIdealFramerate(index int, fps int)
	// SetupDevice negotiates width/height for the device at index. The
	// actual negotiated geometry may differ; read it back via Width/Height.
	SetupDevice(index, width, height int) error
	// IsDeviceSetup reports whether SetupDevice succeeded and the device
	// is ready to deliver frames.
	IsDeviceSetup(index int) bool
	// StopDevice releases the device at index.
	StopDevice(index int)

	// Width, Height, and Size return the negotiated geometry and the
	// byte length of one frame, valid once IsDeviceSetup(index) is true.
	Width(index int) int
	Height(index int) int
	Size(index int) int

	// IsFrameNew reports whether a frame has arrived since the last
	// GetPixels call.
	IsFrameNew(index int) bool
	// GetPixels fills dst with the current frame in BGR order, no
	// vertical flip (videoInput::getPixels(device, buffer, true, true)).
	GetPixels(index int, dst []byte) error
}

// newEngine constructs the platform engine. Tests substitute a fake by
// reassigning this variable.
var newEngine = defaultEngine
