package replay

import (
	"sort"

	"github.com/googleinterns/instant-motion-tracking/pkg/track"
	"gonum.org/v1/gonum/stat"
)

// Collector accumulates per-frame pipeline figures while a session is
// re-run, and reduces them to a Summary.
type Collector struct {
	commands   []float64
	anchors    []float64
	firstScale map[int32]float32
	lastScale  map[int32]float32
	order      []int32
}

func NewCollector() *Collector {
	return &Collector{
		firstScale: map[int32]float32{},
		lastScale:  map[int32]float32{},
	}
}

func (c *Collector) Add(numCommands int, anchors []track.Anchor) {
	c.commands = append(c.commands, float64(numCommands))
	c.anchors = append(c.anchors, float64(len(anchors)))
	for _, a := range anchors {
		if _, seen := c.firstScale[a.StickerID]; !seen {
			c.firstScale[a.StickerID] = a.Scale
			c.order = append(c.order, a.StickerID)
		}
		c.lastScale[a.StickerID] = a.Scale
	}
}

// Commands returns the per-frame tracker command counts, in frame order.
func (c *Collector) Commands() []float64 {
	return c.commands
}

// ScaleDrift is a sticker's anchor scale at first and last sighting. A last
// value above 1 means the tracked region shrank over the session (the
// sticker moved away from the camera, or the tracker's box collapsed).
type ScaleDrift struct {
	StickerID int32   `json:"stickerID"`
	First     float32 `json:"first"`
	Last      float32 `json:"last"`
}

type Summary struct {
	Frames         int          `json:"frames"`
	MeanCommands   float64      `json:"meanCommands"`
	MedianCommands float64      `json:"medianCommands"`
	P95Commands    float64      `json:"p95Commands"`
	MeanAnchors    float64      `json:"meanAnchors"`
	Drift          []ScaleDrift `json:"drift"`
}

func (c *Collector) Summary() Summary {
	s := Summary{Frames: len(c.commands)}
	if s.Frames == 0 {
		return s
	}
	s.MeanCommands = stat.Mean(c.commands, nil)
	s.MeanAnchors = stat.Mean(c.anchors, nil)
	sorted := append([]float64{}, c.commands...)
	sort.Float64s(sorted)
	s.MedianCommands = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P95Commands = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	for _, id := range c.order {
		s.Drift = append(s.Drift, ScaleDrift{
			StickerID: id,
			First:     c.firstScale[id],
			Last:      c.lastScale[id],
		})
	}
	return s
}
