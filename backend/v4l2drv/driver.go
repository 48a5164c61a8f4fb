// Package v4l2drv implements the V4L2 back-end: the state machine that
// takes a /dev/videoN path through open, format negotiation, buffer
// allocation, streaming, and teardown, delivering frames into a single
// caller-owned buffer.
package v4l2drv

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	sys "golang.org/x/sys/unix"

	"github.com/gocapture/vcapture/backend"
	"github.com/gocapture/vcapture/internal/envconfig"
	"github.com/gocapture/vcapture/v4l2"
)

// state is the driver's position in the CLOSED/OPENED/INITIALISED/STREAMING
// lifecycle described for the V4L2 back-end.
type state int

const (
	stateClosed state = iota
	stateOpened
	stateInitialised
	stateStreaming
)

// ioMethod is the active data-transfer method, one of read, mmap, or
// user-pointer. User-pointer is never chosen automatically; it is only
// reachable via WithUserPointerIO.
type ioMethod int

const (
	ioRead ioMethod = iota
	ioMMAP
	ioUserPtr
)

const defaultBufferCount = 4
const defaultTimeout = 5 * time.Second

// The v4l2 package calls are bound through package-level variables so tests
// can substitute fakes for the kernel without a real device node, the same
// indirection the teacher used around its ioctl-backed calls.
var (
	openDevice            = v4l2.OpenDevice
	closeDeviceFn         = v4l2.CloseDevice
	getCapability         = v4l2.GetCapability
	getCropCapability     = v4l2.GetCropCapability
	setCropRect           = v4l2.SetCropRect
	setPixFormat          = v4l2.SetPixFormat
	setStreamCaptureParam = v4l2.SetStreamCaptureParam
	initBuffers           = v4l2.InitBuffers
	mapMemoryBuffers      = v4l2.MapMemoryBuffers
	unmapMemoryBuffers    = v4l2.UnmapMemoryBuffers
	allocUserBuffers      = v4l2.AllocUserBuffers
	freeUserBuffers       = v4l2.FreeUserBuffers
	streamOnFn            = v4l2.StreamOn
	streamOffFn           = v4l2.StreamOff
	queueBuffer           = v4l2.QueueBuffer
	queueUserBuffer       = v4l2.QueueUserBuffer
	dequeueBuffer         = v4l2.DequeueBuffer
	readFrameFn           = v4l2.ReadFrame
	waitForDeviceReady    = v4l2.WaitForDeviceReady
	getCurrentVideoInput  = v4l2.GetCurrentVideoInputIndex
	getVideoInputInfo     = v4l2.GetVideoInputInfo
)

// Option configures a Driver before Open is called.
type Option func(*Driver)

// withIOMethod forces a specific I/O method instead of letting Init
// auto-select between read and mmap.
func withIOMethod(m ioMethod) Option {
	return func(d *Driver) { d.forcedIOMethod = &m }
}

// WithUserPointerIO requests user-pointer streaming I/O. It is never chosen
// automatically by Init's selection rule, but remains available for
// integrations that want caller-owned buffers registered with the kernel.
func WithUserPointerIO() Option {
	return withIOMethod(ioUserPtr)
}

// WithReadIO forces read-style I/O, equivalent to OPENIMAJ_GRABBER_READ
// but scoped to a single Driver instance rather than the process environment.
func WithReadIO() Option {
	return withIOMethod(ioRead)
}

// WithEnvConfig overrides the environment-derived configuration (normally
// loaded once via envconfig.Load at session construction).
func WithEnvConfig(cfg envconfig.Config) Option {
	return func(d *Driver) { d.env = cfg }
}

// Driver implements backend.Driver against a Linux V4L2 device node.
type Driver struct {
	path  string
	state state
	fd    uintptr
	env   envconfig.Config

	forcedIOMethod *ioMethod
	ioMethod       ioMethod

	cap     v4l2.Capability
	bufType v4l2.BufType
	format  v4l2.PixFormat

	// mmap/user-pointer buffer ring
	buffers  [][]byte
	bufCount uint32

	// read-style single buffer
	readBuf []byte

	// rgbBuffer is the single, lazily-reallocated caller-visible buffer
	// holding the most recently captured frame.
	rgbBuffer []byte

	requestedWidth  uint32
	requestedHeight uint32
	requestedFps    uint32

	timeout time.Duration
}

// New constructs a Driver. Options are applied before Open.
func New(opts ...Option) *Driver {
	d := &Driver{
		env:     envconfig.Load(),
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Fd, BufferType, MemIOType, and BufferCount let Driver itself satisfy the
// streamingDevice interface the low-level v4l2 package's buffer helpers
// expect, the same way device.Device did in the teacher.
func (d *Driver) Fd() uintptr            { return d.fd }
func (d *Driver) BufferType() v4l2.BufType { return d.bufType }
func (d *Driver) BufferCount() uint32    { return d.bufCount }
func (d *Driver) MemIOType() v4l2.IOType {
	if d.ioMethod == ioUserPtr {
		return v4l2.IOTypeUserPtr
	}
	return v4l2.IOTypeMMAP
}

// Open stats the path, verifies it is a character device, and opens it
// read-write non-blocking.
func (d *Driver) Open(identifier string) error {
	if d.state != stateClosed {
		return fmt.Errorf("v4l2: open: %w", backend.InvalidState)
	}

	fd, err := openDevice(identifier, sys.O_RDWR|sys.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("v4l2: open %s: %w", identifier, backend.DeviceUnavailable)
	}

	d.path = identifier
	d.fd = fd
	d.state = stateOpened
	return nil
}

// Init negotiates capabilities, picks an I/O method, sets the pixel format
// and frame rate, and allocates buffers for the chosen I/O method.
func (d *Driver) Init(requestedWidth, requestedHeight, requestedFps uint32) error {
	if d.state != stateOpened {
		return fmt.Errorf("v4l2: init: %w", backend.InvalidState)
	}

	cap, err := getCapability(d.fd)
	if err != nil {
		return fmt.Errorf("v4l2: init: query capability: %w", err)
	}
	if !cap.IsVideoCaptureSupported() {
		return fmt.Errorf("v4l2: init: device is not a capture device: %w", backend.Unsupported)
	}
	d.cap = cap
	d.bufType = v4l2.BufTypeVideoCapture

	if err := d.selectIOMethod(cap); err != nil {
		return err
	}

	// crop reset: best effort, cropping is optional per-device.
	if cropCap, err := getCropCapability(d.fd, d.bufType); err == nil {
		_ = setCropRect(d.fd, cropCap.DefaultRect)
	}

	requested := v4l2.PixFormat{
		Width:       requestedWidth,
		Height:      requestedHeight,
		PixelFormat: v4l2.PixelFmtRGB24,
		Field:       v4l2.FieldNone,
	}
	negotiated, err := setPixFormat(d.fd, requested)
	if err != nil {
		return fmt.Errorf("v4l2: init: set format: %w", err)
	}
	d.format = applyBuggyDriverMinimums(negotiated)

	d.requestedWidth, d.requestedHeight, d.requestedFps = requestedWidth, requestedHeight, requestedFps
	if requestedFps != 0 {
		if _, err := setStreamCaptureParam(d.fd, v4l2.CaptureParam{
			TimePerFrame: v4l2.Fract{Numerator: 1, Denominator: requestedFps},
		}); err != nil {
			return fmt.Errorf("v4l2: init: set frame rate: %w", err)
		}
	}

	if err := d.allocateBuffers(); err != nil {
		return fmt.Errorf("v4l2: init: %w", err)
	}

	d.state = stateInitialised
	return nil
}

// applyBuggyDriverMinimums floors bytesperline/sizeimage against a
// paranoid minimum for RGB24, some drivers under-report these after S_FMT.
func applyBuggyDriverMinimums(f v4l2.PixFormat) v4l2.PixFormat {
	minBytesPerLine := f.Width * 3
	if f.BytesPerLine < minBytesPerLine {
		f.BytesPerLine = minBytesPerLine
	}
	minSizeImage := f.BytesPerLine * f.Height
	if f.SizeImage < minSizeImage {
		f.SizeImage = minSizeImage
	}
	return f
}

func (d *Driver) selectIOMethod(cap v4l2.Capability) error {
	if d.forcedIOMethod != nil {
		d.ioMethod = *d.forcedIOMethod
	} else {
		switch {
		case d.env.ForceRead:
			d.ioMethod = ioRead
		case cap.IsStreamingSupported():
			d.ioMethod = ioMMAP
		default:
			d.ioMethod = ioRead
		}
	}

	if d.ioMethod == ioRead && !cap.IsReadWriteSupported() {
		return fmt.Errorf("v4l2: init: device does not support read/write I/O: %w", backend.Unsupported)
	}
	return nil
}

func (d *Driver) allocateBuffers() error {
	switch d.ioMethod {
	case ioRead:
		d.readBuf = make([]byte, d.format.SizeImage)
		return nil
	case ioMMAP:
		d.bufCount = defaultBufferCount
		req, err := initBuffers(d)
		if err != nil {
			return fmt.Errorf("request buffers: %w", err)
		}
		d.bufCount = req.Count
		buffers, err := mapMemoryBuffers(d)
		if err != nil {
			return fmt.Errorf("map buffers: %w", err)
		}
		d.buffers = buffers
		return nil
	case ioUserPtr:
		d.bufCount = defaultBufferCount
		req, err := initBuffers(d)
		if err != nil {
			return fmt.Errorf("request buffers: %w", err)
		}
		d.bufCount = req.Count
		buffers, err := allocUserBuffers(int(d.bufCount), int(d.format.SizeImage))
		if err != nil {
			return fmt.Errorf("alloc user buffers: %w", err)
		}
		d.buffers = buffers
		return nil
	default:
		return fmt.Errorf("v4l2: unknown io method")
	}
}

// StartCapturing queues all buffers and issues STREAMON for mmap/user-ptr;
// it is a no-op for read-style I/O.
func (d *Driver) StartCapturing() error {
	if d.state != stateInitialised {
		return fmt.Errorf("v4l2: start capturing: %w", backend.InvalidState)
	}

	switch d.ioMethod {
	case ioMMAP:
		for i := uint32(0); i < d.bufCount; i++ {
			if _, err := queueBuffer(d.fd, d.MemIOType(), d.bufType, i); err != nil {
				return fmt.Errorf("v4l2: start capturing: queue buffer %d: %w", i, err)
			}
		}
		if err := streamOnFn(d); err != nil {
			return fmt.Errorf("v4l2: start capturing: %w", err)
		}
	case ioUserPtr:
		for i := uint32(0); i < d.bufCount; i++ {
			if _, err := queueUserBuffer(d.fd, d.bufType, i, d.buffers[i]); err != nil {
				return fmt.Errorf("v4l2: start capturing: queue user buffer %d: %w", i, err)
			}
		}
		if err := streamOnFn(d); err != nil {
			return fmt.Errorf("v4l2: start capturing: %w", err)
		}
	case ioRead:
		// no-op
	}

	d.state = stateStreaming
	return nil
}

// SetTimeout configures the per-call NextFrame deadline.
func (d *Driver) SetTimeout(t time.Duration) {
	d.timeout = t
}

// NextFrame blocks on a readiness wait (bounded by the configured timeout)
// and then attempts readFrame, looping through EAGAIN/EIO as "not ready"
// until either a frame arrives or the timeout elapses.
func (d *Driver) NextFrame() backend.Result {
	if d.state != stateStreaming {
		return backend.ResultError
	}

	deadline := time.Now().Add(d.timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return backend.ResultTimeout
		}

		if err := waitForDeviceReady(d.fd, remaining); err != nil {
			if errors.Is(err, v4l2.ErrorTimeout) {
				return backend.ResultTimeout
			}
			return backend.ResultError
		}

		ready, err := d.readFrame()
		if err != nil {
			return backend.ResultError
		}
		if ready {
			return backend.OK
		}
		// not ready (EAGAIN/EIO): loop until timeout.
	}
}

// readFrame performs one capture attempt per the active I/O method. It
// returns (false, nil) for a transient "not ready" condition the caller
// should retry, and a non-nil error for anything else.
func (d *Driver) readFrame() (bool, error) {
	switch d.ioMethod {
	case ioRead:
		n, err := readFrameFn(d.fd, d.readBuf)
		if err != nil {
			if notReady(err) {
				return false, nil
			}
			return false, fmt.Errorf("v4l2: read frame: %w", backend.IoError)
		}
		d.processImage(d.readBuf[:n])
		return true, nil

	case ioMMAP, ioUserPtr:
		buf, err := dequeueBuffer(d.fd, d.MemIOType(), d.bufType)
		if err != nil {
			if notReady(err) {
				return false, nil
			}
			return false, fmt.Errorf("v4l2: dequeue buffer: %w", backend.IoError)
		}

		index := buf.Index
		if d.ioMethod == ioUserPtr {
			index = d.matchUserBufferIndex(buf)
		}

		if buf.Flags&v4l2.BufFlagError == 0 {
			d.processImage(d.buffers[index][:buf.BytesUsed])
		}

		if d.ioMethod == ioMMAP {
			if _, err := queueBuffer(d.fd, d.MemIOType(), d.bufType, buf.Index); err != nil {
				return false, fmt.Errorf("v4l2: requeue buffer: %w", backend.IoError)
			}
		} else {
			if _, err := queueUserBuffer(d.fd, d.bufType, index, d.buffers[index]); err != nil {
				return false, fmt.Errorf("v4l2: requeue user buffer: %w", backend.IoError)
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("v4l2: unknown io method")
	}
}

// notReady reports whether err corresponds to EAGAIN or EIO, the two
// conditions readFrame treats as "no frame yet, try again" rather than a
// hard I/O failure.
func notReady(err error) bool {
	return errors.Is(err, sys.EAGAIN) || errors.Is(err, sys.EIO)
}

// matchUserBufferIndex finds the buffer index whose (start, length) match
// the dequeued buffer's user pointer, since the kernel may not echo back
// the original index for user-pointer I/O.
func (d *Driver) matchUserBufferIndex(buf v4l2.Buffer) uint32 {
	for i, b := range d.buffers {
		if len(b) == 0 {
			continue
		}
		if buf.Info.UserPtr == bufferAddr(b) {
			return uint32(i)
		}
	}
	return buf.Index
}

// bufferAddr returns the address of b's backing array as a uintptr, for
// comparison against a dequeued user-pointer buffer's reported address.
func bufferAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// processImage reallocates rgbBuffer when the incoming frame's length
// differs from its current length, then copies the frame in. This keeps
// Image()'s pointer stable across calls that don't change frame size, and
// guarantees the caller never observes device-owned memory.
func (d *Driver) processImage(frame []byte) {
	if len(d.rgbBuffer) != len(frame) {
		d.rgbBuffer = make([]byte, len(frame))
	}
	copy(d.rgbBuffer, frame)
}

// Image returns the most recently captured frame's bytes.
func (d *Driver) Image() []byte {
	return d.rgbBuffer
}

// Width returns the negotiated frame width.
func (d *Driver) Width() uint32 { return d.format.Width }

// Height returns the negotiated frame height.
func (d *Driver) Height() uint32 { return d.format.Height }

// CurrentVideoInput reports the index of the device's currently selected
// video input (VIDIOC_G_INPUT). It is a read-only diagnostic, not part of
// backend.Driver: the capture state machine always captures from whatever
// input the device already has selected.
func (d *Driver) CurrentVideoInput() (int32, error) {
	if d.state == stateClosed {
		return -1, fmt.Errorf("v4l2: current video input: %w", backend.InvalidState)
	}
	index, err := getCurrentVideoInput(d.fd)
	if err != nil {
		return -1, fmt.Errorf("v4l2: current video input: %w", err)
	}
	return index, nil
}

// VideoInputInfo describes the video input at index (VIDIOC_ENUMINPUT), a
// read-only diagnostic accessor grounded on the same ioctl the teacher used
// to report input name, type, and signal status.
func (d *Driver) VideoInputInfo(index uint32) (v4l2.InputInfo, error) {
	if d.state == stateClosed {
		return v4l2.InputInfo{}, fmt.Errorf("v4l2: video input info: %w", backend.InvalidState)
	}
	info, err := getVideoInputInfo(d.fd, index)
	if err != nil {
		return v4l2.InputInfo{}, fmt.Errorf("v4l2: video input info: %w", err)
	}
	return info, nil
}

// StopCapturing issues STREAMOFF for streaming methods; idempotent.
func (d *Driver) StopCapturing() error {
	if d.state != stateStreaming {
		return nil
	}
	if d.ioMethod != ioRead {
		if err := streamOffFn(d); err != nil {
			return fmt.Errorf("v4l2: stop capturing: %w", err)
		}
	}
	d.state = stateInitialised
	return nil
}

// Uninit releases buffers allocated by Init.
func (d *Driver) Uninit() error {
	if d.state != stateInitialised {
		return fmt.Errorf("v4l2: uninit: %w", backend.InvalidState)
	}

	switch d.ioMethod {
	case ioMMAP:
		if err := unmapMemoryBuffers(d.buffers); err != nil {
			return fmt.Errorf("v4l2: uninit: %w", err)
		}
	case ioUserPtr:
		if err := freeUserBuffers(d.buffers); err != nil {
			return fmt.Errorf("v4l2: uninit: %w", err)
		}
	}
	d.buffers = nil
	d.readBuf = nil
	d.bufCount = 0

	d.state = stateOpened
	return nil
}

// Close closes the underlying file descriptor.
func (d *Driver) Close() error {
	if d.state != stateOpened {
		return fmt.Errorf("v4l2: close: %w", backend.InvalidState)
	}
	if err := closeDeviceFn(d.fd); err != nil {
		return fmt.Errorf("v4l2: close: %w", err)
	}
	d.state = stateClosed
	d.fd = 0
	return nil
}
