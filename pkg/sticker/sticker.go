// Package sticker holds the sticker data model and the wire codec used by
// the application to ship sticker edits into the pipeline.
package sticker

// Render selects which asset/animation is drawn for a sticker.
type Render int32

const (
	// RenderSprite is an image-backed animated sprite (eg a GIF).
	RenderSprite Render = 0
	// RenderRobot is the 3D robot asset.
	RenderRobot Render = 1
	// RenderDino is the 3D dinosaur asset.
	RenderDino Render = 2

	numRenders = 3
)

// Next cycles to the next asset, wrapping back to the first.
// This mirrors the app's tap-to-change-asset action.
func (r Render) Next() Render {
	return (r + 1) % numRenders
}

func (r Render) String() string {
	switch r {
	case RenderSprite:
		return "sprite"
	case RenderRobot:
		return "robot"
	case RenderDino:
		return "dino"
	}
	return "unknown"
}

// Sticker is one user-placed virtual object.
// X and Y are normalized screen coordinates in [0,1], origin top-left.
// Rotation is the user's absolute rotation in radians about the vertical axis,
// and Scale is the user's absolute multiplicative scale (1 = untouched).
type Sticker struct {
	ID       int32   `json:"id"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Rotation float32 `json:"rotation"`
	Scale    float32 `json:"scale"`
	Render   Render  `json:"render"`
}

// NewSticker returns a sticker at the given position with identity user
// transform, rendering the default asset.
func NewSticker(id int32, x, y float32) Sticker {
	return Sticker{
		ID:     id,
		X:      x,
		Y:      y,
		Scale:  1,
		Render: RenderSprite,
	}
}
