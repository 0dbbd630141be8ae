package track

// Box is a screen-space bounding box in normalized coordinates.
// (0,0) is the top-left of the frame, (1,1) the bottom-right.
type Box struct {
	Left   float32 `json:"left"`
	Right  float32 `json:"right"`
	Top    float32 `json:"top"`
	Bottom float32 `json:"bottom"`
}

func (b Box) Width() float32 {
	return b.Right - b.Left
}

func (b Box) Height() float32 {
	return b.Bottom - b.Top
}

func (b Box) MidX() float32 {
	return (b.Left + b.Right) / 2
}

func (b Box) MidY() float32 {
	return (b.Top + b.Bottom) / 2
}

// BoxAround returns a square box of the given edge size centered on (x, y).
// The box may extend outside [0,1] when the center is near an edge.
func BoxAround(x, y, edge float32) Box {
	h := edge / 2
	return Box{
		Left:   x - h,
		Right:  x + h,
		Top:    y - h,
		Bottom: y + h,
	}
}
