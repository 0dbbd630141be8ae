package boxtrack

import (
	"math/rand"
	"sort"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/cyclopcam/logs"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/googleinterns/instant-motion-tracking/pkg/track"
)

// SimParams shape the motion of simulated regions.
type SimParams struct {
	// Drift is the base per-frame velocity of every region, in normalized
	// units. Each region adds a small random perturbation on top.
	Drift r2.Point
	// Shrink is the per-frame multiplicative change of region size.
	// 1 keeps the size constant; 0.99 pulls the anchor away from the camera.
	Shrink float64
	// Jitter is the standard deviation of measurement noise, normalized units.
	Jitter float64
	// DropEvery makes each region silently miss every Nth report, simulating
	// transient tracker lag. 0 never drops.
	DropEvery int
	// Seed makes runs reproducible.
	Seed int64
}

func DefaultSimParams() SimParams {
	return SimParams{
		Drift:  r2.Point{},
		Shrink: 1,
		Jitter: 0,
	}
}

// Sim is a fake box tracker. Each started region moves with a constant
// velocity plus noise, and the reported boxes are smoothed through a full
// bounding-box Kalman filter, drifting, shrinking and occasionally dropping
// out the way a real feature tracker's output does.
type Sim struct {
	log     logs.Log
	params  SimParams
	rng     *rand.Rand
	regions map[int32]*simRegion
}

type simRegion struct {
	id     int32
	kf     *kalman_filter.KalmanBBox
	vel    r2.Point
	center r2.Point
	w, h   float64
	frames int
}

func NewSim(log logs.Log, params SimParams) *Sim {
	if params.Shrink == 0 {
		params.Shrink = 1
	}
	return &Sim{
		log:     log,
		params:  params,
		rng:     rand.New(rand.NewSource(params.Seed)),
		regions: map[int32]*simRegion{},
	}
}

func (s *Sim) Step(cmds []track.Command, pts int64) ([]track.Region, error) {
	for _, c := range cmds {
		switch c.Op {
		case track.CmdCancel:
			delete(s.regions, c.ID)
		case track.CmdStart:
			s.start(c.ID, c.Box)
		}
	}

	regions := make([]track.Region, 0, len(s.regions))
	for _, reg := range s.regions {
		if err := s.advance(reg); err != nil {
			return nil, err
		}
		reg.frames++
		if s.params.DropEvery > 0 && reg.frames%s.params.DropEvery == 0 {
			continue
		}
		cx, cy, w, h := reg.kf.GetState()
		regions = append(regions, track.Region{
			ID: reg.id,
			Box: track.Box{
				Left:   float32(cx - w/2),
				Right:  float32(cx + w/2),
				Top:    float32(cy - h/2),
				Bottom: float32(cy + h/2),
			},
			Timestamp: pts,
		})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].ID < regions[j].ID })
	return regions, nil
}

// LiveIDs returns the ids of all live regions, sorted.
func (s *Sim) LiveIDs() []int32 {
	ids := make([]int32, 0, len(s.regions))
	for id := range s.regions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Sim) start(id int32, box track.Box) {
	cx := float64(box.MidX())
	cy := float64(box.MidY())
	w := float64(box.Width())
	h := float64(box.Height())

	// Zero control input: pure constant-velocity model
	dt := 1.0
	stdDevA := 2.0
	stdDevM := 0.1
	kf := kalman_filter.NewKalmanBBox(
		dt, 0, 0, 0, 0,
		stdDevA, stdDevM, stdDevM, stdDevM, stdDevM,
		kalman_filter.WithStateBBox(cx, cy, w, h),
	)

	vel := s.params.Drift
	if s.params.Jitter > 0 {
		vel = vel.Add(r2.Point{
			X: s.rng.NormFloat64() * s.params.Jitter / 4,
			Y: s.rng.NormFloat64() * s.params.Jitter / 4,
		})
	}

	s.regions[id] = &simRegion{
		id:     id,
		kf:     kf,
		vel:    vel,
		center: r2.Point{X: cx, Y: cy},
		w:      w,
		h:      h,
	}
}

// advance moves the region's true state one frame and folds a measurement of
// it into the Kalman filter.
func (s *Sim) advance(reg *simRegion) error {
	reg.center = reg.center.Add(reg.vel)
	reg.w *= s.params.Shrink
	reg.h *= s.params.Shrink

	mx, my, mw, mh := reg.center.X, reg.center.Y, reg.w, reg.h
	if s.params.Jitter > 0 {
		mx += s.rng.NormFloat64() * s.params.Jitter
		my += s.rng.NormFloat64() * s.params.Jitter
		mw += s.rng.NormFloat64() * s.params.Jitter / 2
		mh += s.rng.NormFloat64() * s.params.Jitter / 2
	}

	reg.kf.Predict()
	if err := reg.kf.Update(mx, my, mw, mh); err != nil {
		return errors.Wrapf(err, "Can't update simulated region %d", reg.id)
	}
	return nil
}
