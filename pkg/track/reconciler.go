package track

import (
	"github.com/cyclopcam/logs"

	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
)

// Params are the tunables of the reconciler.
type Params struct {
	// BoxEdge is the edge size, in normalized units, of the square region
	// handed to the tracker when a sticker is placed or re-anchored.
	BoxEdge float32
}

func DefaultParams() Params {
	return Params{
		BoxEdge: 0.2,
	}
}

// Reconciler maintains tracking state across frames. Each frame it decides,
// per sticker, whether to keep consuming the tracker's region, restart
// tracking at a user-chosen position, or hold the previous anchor while the
// tracker catches up. It also cancels regions whose sticker is gone, so the
// tracker's live set never outlives the sticker set by more than one frame.
//
// Not safe for concurrent use. The pipeline calls Frame once per video frame,
// in timestamp order.
type Reconciler struct {
	log    logs.Log
	params Params

	// Last frame's requested positions, for detecting user repositioning.
	prevRequested map[int32]requested
	// Last frame's output anchors, for riding out tracker lag.
	prevAnchors map[int32]Anchor
}

type requested struct {
	x, y float32
}

func NewReconciler(log logs.Log, params Params) *Reconciler {
	return &Reconciler{
		log:           log,
		params:        params,
		prevRequested: map[int32]requested{},
		prevAnchors:   map[int32]Anchor{},
	}
}

// Frame runs one reconciliation step. stickers is the current edit list,
// resetID the sticker being re-anchored by the user (sticker.NoReset when
// none), and regions the tracker feedback produced by the commands of the
// previous frame. It returns this frame's anchors (one per live sticker, in
// input order) and the tracker commands to emit.
func (r *Reconciler) Frame(stickers []sticker.Sticker, resetID int32, regions []Region, pts int64) ([]Anchor, []Command) {
	regionByID := make(map[int32]Region, len(regions))
	for _, reg := range regions {
		regionByID[reg.ID] = reg
	}

	anchors := make([]Anchor, 0, len(stickers))
	cmds := []Command{}
	seen := make(map[int32]bool, len(stickers))
	nextRequested := make(map[int32]requested, len(stickers))

	for _, st := range stickers {
		if seen[st.ID] {
			r.log.Warnf("Duplicate sticker id %v in edit list. Ignoring the duplicate.", st.ID)
			continue
		}
		seen[st.ID] = true
		nextRequested[st.ID] = requested{st.X, st.Y}

		prevReq, known := r.prevRequested[st.ID]
		reg, hasRegion := regionByID[st.ID]
		reset := st.ID == resetID || (known && (prevReq.x != st.X || prevReq.y != st.Y))

		switch {
		case reset || (!hasRegion && !known):
			// Fresh sticker, or the user re-anchored it. Restart tracking at
			// the requested position, with the scale back at 1.
			cmds = append(cmds,
				Command{Op: CmdCancel, ID: st.ID, Timestamp: pts},
				Command{Op: CmdStart, ID: st.ID, Box: BoxAround(st.X, st.Y, r.params.BoxEdge), Timestamp: pts})
			anchors = append(anchors, Anchor{StickerID: st.ID, X: st.X, Y: st.Y, Scale: 1})
		case hasRegion && reg.Width() > 0:
			anchors = append(anchors, Anchor{
				StickerID: st.ID,
				X:         reg.MidX(),
				Y:         reg.MidY(),
				Scale:     r.params.BoxEdge / reg.Width(),
			})
		default:
			// The tracker has no usable region for a sticker we believe is
			// tracked. Hold the previous anchor and restart tracking there,
			// so the sticker freezes for a frame instead of vanishing.
			prev, ok := r.prevAnchors[st.ID]
			if !ok {
				prev = Anchor{StickerID: st.ID, X: st.X, Y: st.Y, Scale: 1}
			}
			r.log.Warnf("Sticker %v has no usable tracked region. Holding previous anchor and restarting tracking.", st.ID)
			cmds = append(cmds, Command{Op: CmdStart, ID: st.ID, Box: BoxAround(prev.X, prev.Y, r.params.BoxEdge), Timestamp: pts})
			anchors = append(anchors, prev)
		}
	}

	// Regions whose sticker is gone get cancelled once, here.
	for _, reg := range regions {
		if !seen[reg.ID] {
			cmds = append(cmds, Command{Op: CmdCancel, ID: reg.ID, Timestamp: pts})
		}
	}

	r.prevRequested = nextRequested
	prevAnchors := make(map[int32]Anchor, len(anchors))
	for _, a := range anchors {
		prevAnchors[a.StickerID] = a
	}
	r.prevAnchors = prevAnchors

	return anchors, cmds
}

// Reset drops all cross-frame state, as if the session just started.
func (r *Reconciler) Reset() {
	r.prevRequested = map[int32]requested{}
	r.prevAnchors = map[int32]Anchor{}
}
