// Package pose converts reconciled anchors plus user and device rotation into
// final per-sticker model matrices, grouped into per-asset render batches.
package pose

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Session defaults, matching the demo app (portrait phone camera).
const (
	DefaultVerticalFOV = float32(68 * math32.Pi / 180)
	DefaultAspect      = float32(3.0 / 4.0)
	DefaultRefDepth    = float32(-10)
)

// Intrinsics are the session-scoped camera parameters, fixed for the lifetime
// of a pipeline.
type Intrinsics struct {
	VerticalFOV float32 `json:"verticalFOV"` // radians
	Aspect      float32 `json:"aspect"`      // width / height
}

// NewIntrinsics validates the camera parameters. The pipeline refuses to start
// on bad intrinsics rather than guessing camera geometry.
func NewIntrinsics(verticalFOV, aspect float32) (Intrinsics, error) {
	// NaN fails all of these comparisons
	if !(verticalFOV > 0 && verticalFOV < math32.Pi) {
		return Intrinsics{}, fmt.Errorf("Invalid vertical FOV %v radians (need 0 < fov < pi)", verticalFOV)
	}
	if !(aspect > 0) {
		return Intrinsics{}, fmt.Errorf("Invalid aspect ratio %v (need aspect > 0)", aspect)
	}
	return Intrinsics{VerticalFOV: verticalFOV, Aspect: aspect}, nil
}

func DefaultIntrinsics() Intrinsics {
	return Intrinsics{VerticalFOV: DefaultVerticalFOV, Aspect: DefaultAspect}
}
