package render

import (
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
)

// Recorder is a Renderer that records every submission. Tests use it to
// inspect what the pipeline handed to the render boundary, and to inject
// submission failures by setting Err.
type Recorder struct {
	Animations map[sticker.Render]string
	Textures   map[sticker.Render]string
	Submitted  []Submission

	// Err, when set, is returned by the next Submit calls.
	Err error
}

// Submission is one recorded Submit call.
type Submission struct {
	PTS     int64
	Batches []pose.Batch
}

func NewRecorder() *Recorder {
	return &Recorder{
		Animations: map[sticker.Render]string{},
		Textures:   map[sticker.Render]string{},
	}
}

func (rec *Recorder) LoadAnimation(r sticker.Render, path string) error {
	rec.Animations[r] = path
	return nil
}

func (rec *Recorder) LoadTexture(r sticker.Render, path string) error {
	rec.Textures[r] = path
	return nil
}

func (rec *Recorder) Submit(pts int64, batches []pose.Batch) (*Frame, error) {
	if rec.Err != nil {
		return nil, rec.Err
	}
	rec.Submitted = append(rec.Submitted, Submission{PTS: pts, Batches: batches})
	return &Frame{PTS: pts}, nil
}

// Last returns the most recent submission, or nil.
func (rec *Recorder) Last() *Submission {
	if len(rec.Submitted) == 0 {
		return nil
	}
	return &rec.Submitted[len(rec.Submitted)-1]
}
