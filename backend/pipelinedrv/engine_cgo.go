//go:build !windows

package pipelinedrv

/*
#cgo pkg-config: gstreamer-1.0 gstreamer-app-1.0

#include <gst/gst.h>
#include <gst/app/gstappsink.h>
#include <stdlib.h>
#include <string.h>

// pipelinedrv_pad_added links a decodebin's dynamically-appearing output
// pad to the videoconvert element's static sink pad. GStreamer invokes this
// on decodebin's "pad-added" signal; the pad's type is unknown until the
// demuxer/decoder has inspected the stream, which is why this can't be
// linked at graph-construction time (spec.md §9, "Dynamic pad resolution").
static void pipelinedrv_pad_added(GstElement *decodebin, GstPad *pad, gpointer convert) {
	GstPad *sinkPad = gst_element_get_static_pad((GstElement *)convert, "sink");
	if (sinkPad == NULL) {
		return;
	}
	if (!gst_pad_is_linked(sinkPad)) {
		gst_pad_link(pad, sinkPad);
	}
	gst_object_unref(sinkPad);
}

static void pipelinedrv_connect_pad_added(GstElement *decodebin, GstElement *convert) {
	g_signal_connect(decodebin, "pad-added", G_CALLBACK(pipelinedrv_pad_added), convert);
}

static GstCaps *pipelinedrv_sink_caps() {
	return gst_caps_from_string(
		"video/x-raw,format=BGR;video/x-raw,format=GRAY8;"
		"video/x-bayer,format=bggr;video/x-bayer,format=grbg;"
		"video/x-bayer,format=gbrg;video/x-bayer,format=rggb");
}

// The following wrap fixed-field-name caps/structure calls so the Go side
// never has to CString a field name on every NextFrame/SetCapsFilter call.
static gboolean pipelinedrv_caps_get_width(GstStructure *s, gint *out) {
	return gst_structure_get_int(s, "width", out);
}
static gboolean pipelinedrv_caps_get_height(GstStructure *s, gint *out) {
	return gst_structure_get_int(s, "height", out);
}
static void pipelinedrv_caps_get_fps(GstStructure *s, gint *num, gint *den) {
	gst_structure_get_fraction(s, "framerate", num, den);
}
static void pipelinedrv_caps_set_width(GstCaps *c, gint w) {
	gst_caps_set_simple(c, "width", G_TYPE_INT, w, NULL);
}
static void pipelinedrv_caps_set_height(GstCaps *c, gint h) {
	gst_caps_set_simple(c, "height", G_TYPE_INT, h, NULL);
}
static void pipelinedrv_caps_set_fps(GstCaps *c, gint num, gint den) {
	gst_caps_set_simple(c, "framerate", GST_TYPE_FRACTION, num, den, NULL);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/gocapture/vcapture/backend"
)

var gstInitOnce sync.Once

// cgoEngine implements gstEngine against libgstreamer-1.0/libgstreamer-app-1.0.
type cgoEngine struct{}

func newCgoEngine() *cgoEngine { return &cgoEngine{} }

func (e *cgoEngine) Init() {
	gstInitOnce.Do(func() {
		C.gst_init(nil, nil)
	})
}

func (e *cgoEngine) IsURI(locator string) bool {
	cs := C.CString(locator)
	defer C.free(unsafe.Pointer(cs))
	return C.gst_uri_is_valid(cs) != 0
}

func (e *cgoEngine) Protocol(locator string) string {
	cs := C.CString(locator)
	defer C.free(unsafe.Pointer(cs))
	proto := C.gst_uri_get_protocol(cs)
	if proto == nil {
		return ""
	}
	defer C.g_free(C.gpointer(unsafe.Pointer(proto)))
	return C.GoString(proto)
}

func (e *cgoEngine) ParseLaunch(desc string) (pipelineElement, []namedElement, error) {
	cs := C.CString(desc)
	defer C.free(unsafe.Pointer(cs))

	var gerr *C.GError
	pipeline := C.gst_parse_launch(cs, &gerr)
	if pipeline == nil {
		msg := "unknown parse error"
		if gerr != nil {
			msg = C.GoString(gerr.message)
			C.g_error_free(gerr)
		}
		return nil, nil, fmt.Errorf("pipeline: parse launch: %s", msg)
	}

	var sinks []namedElement
	iter := C.gst_bin_iterate_sinks((*C.GstBin)(unsafe.Pointer(pipeline)))
	defer C.gst_iterator_free(iter)

	var value C.GValue
	for C.gst_iterator_next(iter, &value) == C.GST_ITERATOR_OK {
		elem := (*C.GstElement)(unsafe.Pointer(C.g_value_get_object(&value)))
		name := C.GoString(C.gst_element_get_name(elem))
		sinks = append(sinks, namedElement{element: elem, name: name})
		C.g_value_unset(&value)
	}

	return pipeline, sinks, nil
}

func (e *cgoEngine) BuildURIPipeline(uri string, isV4L2URI bool) (pipelineElement, sinkElement, error) {
	pipeline := C.gst_pipeline_new(nil)
	if pipeline == nil {
		return nil, nil, fmt.Errorf("pipeline: create pipeline element")
	}

	convertName := C.CString("videoconvert")
	defer C.free(unsafe.Pointer(convertName))
	sinkName := C.CString("appsink")
	defer C.free(unsafe.Pointer(sinkName))

	convert := C.gst_element_factory_make(convertName, nil)
	sink := C.gst_element_factory_make(sinkName, nil)
	if convert == nil || sink == nil {
		return nil, nil, fmt.Errorf("pipeline: missing videoconvert/appsink plugin")
	}

	curi := C.CString(uri)
	defer C.free(unsafe.Pointer(curi))

	if isV4L2URI {
		// Some elements do not support caps renegotiation across a
		// decodebin; build the source element directly from the URI.
		source := C.gst_element_make_from_uri(C.GST_URI_SRC, curi, nil, nil)
		if source == nil {
			return nil, nil, fmt.Errorf("pipeline: make source from uri %q", uri)
		}
		C.gst_bin_add_many((*C.GstBin)(unsafe.Pointer(pipeline)), source, convert, sink, nil)
		if C.gst_element_link_many(source, convert, sink, nil) == 0 {
			return nil, nil, fmt.Errorf("pipeline: link source->convert->sink")
		}
		return pipeline, sink, nil
	}

	decodebinName := C.CString("decodebin")
	defer C.free(unsafe.Pointer(decodebinName))
	decodebin := C.gst_element_factory_make(decodebinName, nil)
	if decodebin == nil {
		return nil, nil, fmt.Errorf("pipeline: missing decodebin plugin")
	}
	uriProp := C.CString("uri")
	defer C.free(unsafe.Pointer(uriProp))
	C.g_object_set(C.gpointer(unsafe.Pointer(decodebin)), uriProp, curi, nil)

	C.gst_bin_add_many((*C.GstBin)(unsafe.Pointer(pipeline)), decodebin, convert, sink, nil)
	if C.gst_element_link(convert, sink) == 0 {
		return nil, nil, fmt.Errorf("pipeline: link convert->sink")
	}
	C.pipelinedrv_connect_pad_added(decodebin, convert)

	return pipeline, sink, nil
}

func (e *cgoEngine) ConfigureSink(sink sinkElement, isLive bool) {
	s := (*C.GstAppSink)(unsafe.Pointer(sink.(*C.GstElement)))
	C.gst_app_sink_set_max_buffers(s, 1)
	C.gst_app_sink_set_drop(s, C.gboolean(boolToInt(isLive)))
	C.gst_app_sink_set_emit_signals(s, 0)
	caps := C.pipelinedrv_sink_caps()
	C.gst_app_sink_set_caps(s, caps)
	C.gst_caps_unref(caps)
}

func (e *cgoEngine) SetState(pipeline pipelineElement, playing bool) error {
	target := C.GST_STATE_NULL
	if playing {
		target = C.GST_STATE_PLAYING
	}
	ret := C.gst_element_set_state(pipeline.(*C.GstElement), C.GstState(target))
	if ret == C.GST_STATE_CHANGE_FAILURE {
		return fmt.Errorf("pipeline: set state: %w", backend.IoError)
	}
	var state, pending C.GstState
	C.gst_element_get_state(pipeline.(*C.GstElement), &state, &pending, C.GstClockTime(5*1e9))
	return nil
}

func (e *cgoEngine) Stop(pipeline pipelineElement) {
	if pipeline == nil {
		return
	}
	C.gst_element_set_state(pipeline.(*C.GstElement), C.GST_STATE_NULL)
}

func (e *cgoEngine) IsEOS(sink sinkElement) bool {
	s := (*C.GstAppSink)(unsafe.Pointer(sink.(*C.GstElement)))
	return C.gst_app_sink_is_eos(s) != 0
}

func (e *cgoEngine) PullSample(sink sinkElement) (sampleHandle, bool) {
	s := (*C.GstAppSink)(unsafe.Pointer(sink.(*C.GstElement)))
	sample := C.gst_app_sink_pull_sample(s)
	if sample == nil {
		return nil, false
	}
	return sample, true
}

func (e *cgoEngine) UnrefSample(sample sampleHandle) {
	if sample == nil {
		return
	}
	C.gst_sample_unref((*C.GstSample)(sample.(*C.GstSample)))
}

func (e *cgoEngine) MapBuffer(sample sampleHandle) ([]byte, bool) {
	s := sample.(*C.GstSample)
	buf := C.gst_sample_get_buffer(s)
	if buf == nil {
		return nil, false
	}
	var info C.GstMapInfo
	if C.gst_buffer_map(buf, &info, C.GST_MAP_READ) == 0 {
		return nil, false
	}
	data := C.GoBytes(unsafe.Pointer(info.data), C.int(info.size))
	C.gst_buffer_unmap(buf, &info)
	return data, true
}

func (e *cgoEngine) SampleCaps(sample sampleHandle) (width, height, fpsNum, fpsDen int, ok bool) {
	s := sample.(*C.GstSample)
	caps := C.gst_sample_get_caps(s)
	if caps == nil {
		return 0, 0, 0, 0, false
	}
	structure := C.gst_caps_get_structure(caps, 0)
	if structure == nil {
		return 0, 0, 0, 0, false
	}

	var w, h, num, den C.gint
	gotW := C.pipelinedrv_caps_get_width(structure, &w) != 0
	gotH := C.pipelinedrv_caps_get_height(structure, &h) != 0
	C.pipelinedrv_caps_get_fps(structure, &num, &den)

	if !gotW || !gotH {
		return 0, 0, 0, 0, false
	}
	return int(w), int(h), int(num), int(den), true
}

func (e *cgoEngine) QueryPosition(pipeline pipelineElement, unit positionUnit) (int64, bool) {
	if pipeline == nil {
		return 0, false
	}
	var pos C.gint64
	if C.gst_element_query_position(pipeline.(*C.GstElement), gstFormat(unit), &pos) == 0 {
		return 0, false
	}
	return int64(pos), true
}

func (e *cgoEngine) Seek(pipeline pipelineElement, unit positionUnit, value int64) error {
	if pipeline == nil {
		return fmt.Errorf("pipeline: seek: %w", backend.InvalidState)
	}
	flags := C.GST_SEEK_FLAG_FLUSH | C.GST_SEEK_FLAG_ACCURATE
	if C.gst_element_seek_simple(pipeline.(*C.GstElement), gstFormat(unit), C.GstSeekFlags(flags), C.gint64(value)) == 0 {
		return fmt.Errorf("pipeline: seek: %w", backend.IoError)
	}
	return nil
}

func (e *cgoEngine) SetCapsFilter(sink sinkElement, width, height, fpsNum, fpsDen int) {
	if sink == nil {
		return
	}
	base := C.pipelinedrv_sink_caps()
	caps := C.gst_caps_make_writable(base)
	if width > 0 {
		C.pipelinedrv_caps_set_width(caps, C.gint(width))
	}
	if height > 0 {
		C.pipelinedrv_caps_set_height(caps, C.gint(height))
	}
	if fpsNum > 0 && fpsDen > 0 {
		C.pipelinedrv_caps_set_fps(caps, C.gint(fpsNum), C.gint(fpsDen))
	}
	s := (*C.GstAppSink)(unsafe.Pointer(sink.(*C.GstElement)))
	C.gst_app_sink_set_caps(s, caps)
	C.gst_caps_unref(caps)
}

func (e *cgoEngine) QueueLength(sink sinkElement) int {
	if sink == nil {
		return 0
	}
	s := (*C.GstAppSink)(unsafe.Pointer(sink.(*C.GstElement)))
	return int(C.gst_app_sink_get_max_buffers(s))
}

func (e *cgoEngine) SetQueueLength(sink sinkElement, n int) {
	if sink == nil {
		return
	}
	s := (*C.GstAppSink)(unsafe.Pointer(sink.(*C.GstElement)))
	C.gst_app_sink_set_max_buffers(s, C.guint(n))
}

func gstFormat(unit positionUnit) C.GstFormat {
	switch unit {
	case unitDefault:
		return C.GST_FORMAT_DEFAULT
	case unitPercent:
		return C.GST_FORMAT_PERCENT
	default:
		return C.GST_FORMAT_TIME
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
