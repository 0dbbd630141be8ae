package pose

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/cyclopcam/logs"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
)

// Params are the tunables of the composer.
type Params struct {
	// RefDepth is the camera-space Z at which an anchor with scale 1 sits.
	// Negative, since the camera looks down -Z.
	RefDepth float32
}

func DefaultParams() Params {
	return Params{
		RefDepth: DefaultRefDepth,
	}
}

// Posed is one sticker's final transform, ready for render submission.
// Matrix is column-major with the translation in the fourth column, the
// convention the renderer consumes.
type Posed struct {
	StickerID int32          `json:"stickerID"`
	Render    sticker.Render `json:"render"`
	Matrix    mgl32.Mat4     `json:"matrix"`
}

// Batch groups the posed stickers of one asset. The renderer draws one asset
// at a time, so the composer emits batches ordered by ascending descriptor,
// stickers within a batch in input order.
type Batch struct {
	Render sticker.Render `json:"render"`
	Posed  []Posed        `json:"posed"`
}

// Composer turns anchors + user transforms + device orientation into model
// matrices. Stateless frame to frame; everything is recomputed per frame.
type Composer struct {
	log        logs.Log
	intrinsics Intrinsics
	params     Params
	aspects    map[sticker.Render]float32
}

func NewComposer(log logs.Log, intrinsics Intrinsics, params Params) (*Composer, error) {
	if _, err := NewIntrinsics(intrinsics.VerticalFOV, intrinsics.Aspect); err != nil {
		return nil, fmt.Errorf("Failed to create composer: %w", err)
	}
	if !(params.RefDepth < 0) {
		return nil, fmt.Errorf("Invalid reference depth %v (the camera looks down -Z, so the depth must be negative)", params.RefDepth)
	}
	return &Composer{
		log:        log,
		intrinsics: intrinsics,
		params:     params,
		aspects:    map[sticker.Render]float32{},
	}, nil
}

// SetAssetAspect overrides the in-plane aspect ratio of an image-backed asset,
// once its texture dimensions are known. Ignored for uniform (3D) assets.
func (c *Composer) SetAssetAspect(r sticker.Render, aspect float32) {
	if aspect > 0 {
		c.aspects[r] = aspect
	}
}

func (c *Composer) Intrinsics() Intrinsics {
	return c.intrinsics
}

func (c *Composer) RefDepth() float32 {
	return c.params.RefDepth
}

// Compose joins anchors with their sticker records by id and produces the
// frame's render batches. An anchor without a sticker record is an upstream
// bug: it is rendered with an identity user transform and the default asset,
// and logged, rather than dropped.
func (c *Composer) Compose(anchors []track.Anchor, stickers []sticker.Sticker, dev Orientation) []Batch {
	byID := make(map[int32]sticker.Sticker, len(stickers))
	for _, st := range stickers {
		if _, dup := byID[st.ID]; !dup {
			byID[st.ID] = st
		}
	}

	grouped := map[sticker.Render][]Posed{}
	for _, a := range anchors {
		st, ok := byID[a.StickerID]
		if !ok {
			c.log.Warnf("Anchor %v has no sticker record. Composing with an identity user transform.", a.StickerID)
			st = sticker.Sticker{ID: a.StickerID, Scale: 1, Render: sticker.RenderSprite}
		}
		grouped[st.Render] = append(grouped[st.Render], Posed{
			StickerID: a.StickerID,
			Render:    st.Render,
			Matrix:    c.model(a, st, dev),
		})
	}

	renders := make([]sticker.Render, 0, len(grouped))
	for r := range grouped {
		renders = append(renders, r)
	}
	sort.Slice(renders, func(i, j int) bool { return renders[i] < renders[j] })

	batches := make([]Batch, 0, len(renders))
	for _, r := range renders {
		batches = append(batches, Batch{Render: r, Posed: grouped[r]})
	}
	return batches
}

func (c *Composer) model(a track.Anchor, st sticker.Sticker, dev Orientation) mgl32.Mat4 {
	p := c.preset(st.Render)

	// User rotation is negated so the object turns with the drag direction.
	rot := dev.Mat3().Mul3(mgl32.Rotate3DY(-st.Rotation))
	if p.Upright != 0 {
		rot = rot.Mul3(mgl32.Rotate3DX(p.Upright))
	}

	s := st.Scale * p.Scale
	sv := mgl32.Vec3{s, s, s}
	if p.Aspect != 0 {
		sv[0] = s * p.Aspect
	}

	m := rot.Mul3(mgl32.Diag3(sv)).Mat4()
	m.SetCol(3, c.Translation(a).Vec4(1))
	return m
}

// Translation maps an anchor into camera space with a pinhole inverse
// projection: depth is the reference depth scaled by the anchor's scale
// factor, and the normalized top-left-origin coordinates flip into the
// center-origin, Y-up camera frame.
func (c *Composer) Translation(a track.Anchor) mgl32.Vec3 {
	z := c.params.RefDepth * a.Scale
	halfH := math32.Abs(z) * math32.Tan(c.intrinsics.VerticalFOV/2)
	halfW := halfH * c.intrinsics.Aspect
	return mgl32.Vec3{
		(1 - 2*a.X) * halfW,
		(1 - 2*a.Y) * halfH,
		z,
	}
}

// ScreenBox returns the normalized screen-space footprint of a sticker's
// rendered quad. The overlay renderer draws it, and tap hit-testing queries it.
func (c *Composer) ScreenBox(a track.Anchor, st sticker.Sticker) track.Box {
	p := c.preset(st.Render)
	z := c.params.RefDepth * a.Scale
	halfH := math32.Abs(z) * math32.Tan(c.intrinsics.VerticalFOV/2)
	halfW := halfH * c.intrinsics.Aspect
	h := st.Scale * p.Scale / 2
	hx := h / (2 * halfW)
	hy := h / (2 * halfH)
	if p.Aspect != 0 {
		hx *= p.Aspect
	}
	return track.Box{
		Left:   a.X - hx,
		Right:  a.X + hx,
		Top:    a.Y - hy,
		Bottom: a.Y + hy,
	}
}

func (c *Composer) preset(r sticker.Render) Preset {
	p := PresetFor(r)
	if a, ok := c.aspects[r]; ok && p.Aspect != 0 {
		p.Aspect = a
	}
	return p
}
