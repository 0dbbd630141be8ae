// Package render defines the render-submission boundary of the pipeline.
//
// The real renderer is a GPU system outside this repo. Overlay is a software
// stand-in that composites labeled 2D quads, good enough to watch the
// pipeline's behavior live; Recorder captures submissions for tests.
package render

import (
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
)

// Frame is one composited output frame.
type Frame struct {
	PTS    int64  `json:"pts"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	JPEG   []byte `json:"-"`
}

// Renderer is the external rendering collaborator. Matrices arrive
// column-major with the translation in the fourth column, one batch per
// asset, batches ordered by ascending render descriptor.
//
// A Submit error means this frame could not be composited. The pipeline
// reports it and moves on; the next frame is attempted independently.
type Renderer interface {
	LoadAnimation(r sticker.Render, path string) error
	LoadTexture(r sticker.Render, path string) error
	Submit(pts int64, batches []pose.Batch) (*Frame, error)
}
