//go:build !windows

package capture

import "github.com/gocapture/vcapture/backend/pipelinedrv"

// NewPipelineGrabber constructs a Grabber bound directly to the
// media-pipeline back-end. The Identifier of the Device passed to
// StartSession (a URI, a file path, or a manual pipeline description) is
// handed straight to Driver.Open, exactly as spec.md §4.4 describes for
// that back-end.
func NewPipelineGrabber() *Grabber {
	return &Grabber{driver: pipelinedrv.New()}
}
