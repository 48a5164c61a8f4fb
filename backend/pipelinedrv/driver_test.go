//go:build !windows

package pipelinedrv

import (
	"errors"
	"testing"

	"github.com/gocapture/vcapture/backend"
)

// fakeEngine is an in-memory gstEngine used to exercise driver.go's state
// machine and property translation without a native GStreamer toolchain.
type fakeEngine struct {
	uris map[string]string // locator -> protocol, membership implies IsURI

	parseErr error
	sinks    []namedElement

	buildErr error

	setStateErr error
	playing     bool
	stopped     int

	eos     bool
	samples [][]byte
	pullIdx int

	mapFails bool

	width, height, fpsNum, fpsDen int
	capsOK                        bool

	queryPos map[positionUnit]int64
	seekErr  error
	lastSeek struct {
		unit  positionUnit
		value int64
	}

	lastCapsFilter struct{ w, h, fn, fd int }
	queueLen       int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		uris:     map[string]string{},
		queryPos: map[positionUnit]int64{},
		queueLen: 1,
	}
}

func (f *fakeEngine) Init() {}

func (f *fakeEngine) IsURI(locator string) bool {
	_, ok := f.uris[locator]
	return ok
}

func (f *fakeEngine) Protocol(locator string) string { return f.uris[locator] }

func (f *fakeEngine) ParseLaunch(desc string) (pipelineElement, []namedElement, error) {
	if f.parseErr != nil {
		return nil, nil, f.parseErr
	}
	return "pipeline:" + desc, f.sinks, nil
}

func (f *fakeEngine) BuildURIPipeline(uri string, isV4L2URI bool) (pipelineElement, sinkElement, error) {
	if f.buildErr != nil {
		return nil, nil, f.buildErr
	}
	return "pipeline:" + uri, "sink:" + uri, nil
}

func (f *fakeEngine) ConfigureSink(sinkElement, bool) {}

func (f *fakeEngine) SetState(pipeline pipelineElement, playing bool) error {
	if f.setStateErr != nil {
		return f.setStateErr
	}
	f.playing = playing
	if !playing {
		f.stopped++
	}
	return nil
}

func (f *fakeEngine) Stop(pipelineElement) {
	f.playing = false
	f.stopped++
}

func (f *fakeEngine) IsEOS(sinkElement) bool { return f.eos }

func (f *fakeEngine) PullSample(sinkElement) (sampleHandle, bool) {
	if f.pullIdx >= len(f.samples) {
		return nil, false
	}
	s := f.samples[f.pullIdx]
	f.pullIdx++
	return s, true
}

func (f *fakeEngine) UnrefSample(sampleHandle) {}

func (f *fakeEngine) MapBuffer(sample sampleHandle) ([]byte, bool) {
	if f.mapFails {
		return nil, false
	}
	return sample.([]byte), true
}

func (f *fakeEngine) SampleCaps(sampleHandle) (int, int, int, int, bool) {
	return f.width, f.height, f.fpsNum, f.fpsDen, f.capsOK
}

func (f *fakeEngine) QueryPosition(pipeline pipelineElement, unit positionUnit) (int64, bool) {
	v, ok := f.queryPos[unit]
	return v, ok
}

func (f *fakeEngine) Seek(pipeline pipelineElement, unit positionUnit, value int64) error {
	f.lastSeek.unit, f.lastSeek.value = unit, value
	return f.seekErr
}

func (f *fakeEngine) SetCapsFilter(sink sinkElement, width, height, fpsNum, fpsDen int) {
	f.lastCapsFilter.w, f.lastCapsFilter.h, f.lastCapsFilter.fn, f.lastCapsFilter.fd = width, height, fpsNum, fpsDen
}

func (f *fakeEngine) QueueLength(sinkElement) int { return f.queueLen }

func (f *fakeEngine) SetQueueLength(_ sinkElement, n int) { f.queueLen = n }

func newTestDriver(e *fakeEngine) *Driver {
	return &Driver{engine: e, queueLength: 1}
}

func TestOpenManualPipelineFindsAppsink(t *testing.T) {
	e := newFakeEngine()
	e.sinks = []namedElement{{element: "fakesink0", name: "fakesink0"}, {element: "mysink", name: "mysink (GstAppSink)"}}
	d := newTestDriver(e)

	if err := d.Open("videotestsrc ! videoconvert ! appsink name=mysink"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !d.manualPipeline {
		t.Errorf("expected manualPipeline=true")
	}
	if d.sink != "mysink" {
		t.Errorf("sink = %v, want mysink", d.sink)
	}
}

func TestOpenManualPipelineNoSinkIsConfigError(t *testing.T) {
	e := newFakeEngine()
	e.sinks = []namedElement{{element: "fakesink0", name: "fakesink0"}}
	d := newTestDriver(e)

	err := d.Open("videotestsrc ! fakesink")
	if !errors.Is(err, backend.ConfigError) {
		t.Errorf("Open: got %v, want ConfigError", err)
	}
}

func TestOpenURILocator(t *testing.T) {
	e := newFakeEngine()
	e.uris["v4l2:///dev/video0"] = "v4l2"
	d := newTestDriver(e)

	if err := d.Open("v4l2:///dev/video0"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.manualPipeline {
		t.Errorf("expected manualPipeline=false for a URI locator")
	}
	if !d.isV4L2URI {
		t.Errorf("expected isV4L2URI=true")
	}
}

func TestOpenWrongStateIsInvalidState(t *testing.T) {
	e := newFakeEngine()
	d := newTestDriver(e)
	d.state = stateOpened

	if err := d.Open("x"); !errors.Is(err, backend.InvalidState) {
		t.Errorf("Open: got %v, want InvalidState", err)
	}
}

func openedURIDriver(e *fakeEngine, uri string) *Driver {
	e.uris[uri] = "file"
	d := newTestDriver(e)
	d.Open(uri)
	return d
}

func TestInitBuildsURIPipeline(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")

	if err := d.Init(640, 480, 30); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if d.pipeline == nil || d.sink == nil {
		t.Errorf("expected pipeline/sink to be built")
	}
	if e.lastCapsFilter.w != 640 || e.lastCapsFilter.h != 480 {
		t.Errorf("caps filter = %+v, want 640x480", e.lastCapsFilter)
	}
}

func TestNextFrameStartsPipelineLazily(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)

	if e.playing {
		t.Fatalf("pipeline should not be playing before first NextFrame")
	}

	e.samples = [][]byte{[]byte("frame0")}
	e.capsOK = true
	e.width, e.height, e.fpsNum, e.fpsDen = 320, 240, 30, 1

	if got := d.NextFrame(); got != backend.OK {
		t.Fatalf("NextFrame = %v, want OK", got)
	}
	if !e.playing {
		t.Errorf("expected pipeline playing after first NextFrame")
	}
	if string(d.Image()) != "frame0" {
		t.Errorf("Image() = %q, want frame0", d.Image())
	}
	if d.Width() != 320 || d.Height() != 240 {
		t.Errorf("Width/Height = %d/%d, want 320/240", d.Width(), d.Height())
	}
}

func TestNextFrameAfterEOSAlwaysErrors(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)
	e.eos = true

	for i := 0; i < 3; i++ {
		if got := d.NextFrame(); got != backend.ResultError {
			t.Fatalf("NextFrame[%d] = %v, want Error", i, got)
		}
	}
}

func TestWidthHeightZeroBeforeFirstFrame(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)

	if d.Width() != 0 || d.Height() != 0 {
		t.Errorf("Width/Height before first frame = %d/%d, want 0/0", d.Width(), d.Height())
	}
	if _, err := d.GetProperty(backend.FrameWidth); !errors.Is(err, backend.ErrNoFrameYet) {
		t.Errorf("GetProperty(FrameWidth) before first frame: got %v, want ErrNoFrameYet", err)
	}
}

func TestSetPropertyFrameWidthRestartsPlayingPipeline(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)
	e.samples = [][]byte{[]byte("f")}
	e.capsOK = true
	d.NextFrame() // now streaming

	stoppedBefore := e.stopped
	if err := d.SetProperty(backend.FrameWidth, 800); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	if e.lastCapsFilter.w != 800 {
		t.Errorf("caps filter width = %d, want 800", e.lastCapsFilter.w)
	}
	if e.stopped <= stoppedBefore {
		t.Errorf("expected pipeline to be stopped/restarted")
	}
	if !e.playing {
		t.Errorf("expected pipeline playing again after restart")
	}
}

func TestFpsPropertyRoundTrip(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)

	if err := d.SetProperty(backend.Fps, 29.97); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	got := float64(e.lastCapsFilter.fn) / float64(e.lastCapsFilter.fd)
	if diff := got - 29.97; diff > 0.001 || diff < -0.001 {
		t.Errorf("approximated fps = %v, want within 0.001 of 29.97", got)
	}
}

func TestPosMsecSeekRoundTrip(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)

	if err := d.SetProperty(backend.PosMsec, 1500); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	if e.lastSeek.unit != unitTime {
		t.Errorf("seek unit = %v, want unitTime", e.lastSeek.unit)
	}
	e.queryPos[unitTime] = e.lastSeek.value
	got, err := d.GetProperty(backend.PosMsec)
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if got != 1500 {
		t.Errorf("GetProperty(PosMsec) = %v, want 1500", got)
	}
}

func TestStopCapturingIsIdempotent(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)

	if err := d.StopCapturing(); err != nil {
		t.Fatalf("StopCapturing (not streaming): %v", err)
	}
	e.samples = [][]byte{[]byte("f")}
	e.capsOK = true
	d.NextFrame()

	if err := d.StopCapturing(); err != nil {
		t.Fatalf("StopCapturing: %v", err)
	}
	if err := d.StopCapturing(); err != nil {
		t.Fatalf("second StopCapturing: %v", err)
	}
}

func TestQueueLengthGetSet(t *testing.T) {
	e := newFakeEngine()
	d := openedURIDriver(e, "file:///clip.mp4")
	d.Init(0, 0, 0)

	if err := d.SetProperty(backend.QueueLength, 4); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	got, err := d.GetProperty(backend.QueueLength)
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if got != 4 {
		t.Errorf("QueueLength = %v, want 4", got)
	}
}
