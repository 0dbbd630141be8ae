// Package boxtrack defines the pipeline's contract with the external 2D box
// tracker, and provides a simulated tracker used by tests and the demo driver.
//
// The real tracker is a feature-flow system outside this repo. The pipeline
// only ever talks to it through the Tracker interface, and always with a one
// frame delay: the regions consumed at frame N are the ones produced by the
// commands emitted at frame N-1.
package boxtrack

import (
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
)

// Tracker advances once per video frame.
//
// Step first applies the frame's command stream in order (a cancel for an id
// precedes its start; a start for a live id replaces that region), then
// tracks for one frame interval and reports the regions now live. Region ids
// absent from the result are simply not tracked this frame.
type Tracker interface {
	Step(cmds []track.Command, pts int64) ([]track.Region, error)
}
