package pipeline

import (
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/render"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
)

// FrameInput is everything the pipeline consumes for one frame.
//
// Sticker state arrives either as the app's wire message, or already decoded.
// When Message is non-empty it wins, and a decode failure falls back to the
// previous frame's stickers.
type FrameInput struct {
	PTS         int64
	Message     string
	Stickers    []sticker.Sticker
	ResetID     int32
	Orientation pose.Orientation
}

// FrameState is the pipeline's output for one frame. Regions is the tracker
// output produced this frame; anchors are always computed against the
// previous frame's regions, so on the frame a sticker is placed its anchor
// is the raw placement, and the first tracked anchor appears a frame later.
type FrameState struct {
	PTS      int64             `json:"pts"`
	Stickers []sticker.Sticker `json:"stickers"`
	Anchors  []track.Anchor    `json:"anchors"`
	Commands []track.Command   `json:"commands"`
	Regions  []track.Region    `json:"regions"`
	Batches  []pose.Batch      `json:"batches"`
	Frame    *render.Frame     `json:"frame,omitempty"`
}

// FrameSample is a small per-frame figure kept in the recent-history ring
// for the debug chart.
type FrameSample struct {
	PTS       int64   `json:"pts"`
	Commands  int     `json:"commands"`
	Anchors   int     `json:"anchors"`
	ProcessMS float64 `json:"processMS"`
}
