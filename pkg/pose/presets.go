package pose

import (
	"github.com/chewxy/math32"

	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
)

// Preset is the fixed per-asset rendering adjustment. Scale makes visually
// different-sized assets appear comparable at user scale 1. Upright is a
// rotation about X aligning the asset's authored up axis with the render's
// vertical axis. Aspect is the in-plane width/height ratio for image-backed
// assets (0 means uniform).
type Preset struct {
	Scale   float32
	Aspect  float32
	Upright float32
}

// PresetFor returns the preset for an asset. Unknown descriptors get the
// sprite preset, since that is what the renderer falls back to drawing.
func PresetFor(r sticker.Render) Preset {
	switch r {
	case sticker.RenderRobot:
		return Preset{Scale: 1.0, Upright: math32.Pi / 2}
	case sticker.RenderDino:
		return Preset{Scale: 0.75, Upright: math32.Pi / 2}
	}
	return Preset{Scale: 0.3, Aspect: 1.0}
}
