package pose

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"

	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
)

func testComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(logs.NewTestingLog(t), DefaultIntrinsics(), DefaultParams())
	require.NoError(t, err)
	return c
}

func TestIntrinsicsValidation(t *testing.T) {
	nan := math32.NaN()
	bad := [][2]float32{
		{0, 0.75},
		{-1, 0.75},
		{math32.Pi, 0.75},
		{nan, 0.75},
		{1.2, 0},
		{1.2, -3},
		{1.2, nan},
	}
	for _, b := range bad {
		_, err := NewIntrinsics(b[0], b[1])
		require.Error(t, err, "fov=%v aspect=%v", b[0], b[1])
	}
	in, err := NewIntrinsics(DefaultVerticalFOV, DefaultAspect)
	require.NoError(t, err)
	require.Equal(t, DefaultIntrinsics(), in)

	_, err = NewComposer(logs.NewTestingLog(t), Intrinsics{}, DefaultParams())
	require.Error(t, err)
	_, err = NewComposer(logs.NewTestingLog(t), DefaultIntrinsics(), Params{RefDepth: 10})
	require.Error(t, err)
}

func TestTranslationIdentity(t *testing.T) {
	c := testComposer(t)
	v := c.Translation(track.Anchor{StickerID: 1, X: 0.5, Y: 0.5, Scale: 1})
	require.InDelta(t, 0, v.X(), 1e-6)
	require.InDelta(t, 0, v.Y(), 1e-6)
	require.InDelta(t, DefaultRefDepth, v.Z(), 1e-6)
}

func TestTranslationMapping(t *testing.T) {
	c := testComposer(t)
	halfH := 10 * math32.Tan(DefaultVerticalFOV/2)
	halfW := halfH * DefaultAspect

	// Top-left corner maps to +halfW, +halfH (camera space is Y up)
	v := c.Translation(track.Anchor{X: 0, Y: 0, Scale: 1})
	require.InDelta(t, halfW, v.X(), 1e-4)
	require.InDelta(t, halfH, v.Y(), 1e-4)

	// Bottom-right at double depth
	v = c.Translation(track.Anchor{X: 1, Y: 1, Scale: 2})
	require.InDelta(t, -2*halfW, v.X(), 1e-4)
	require.InDelta(t, -2*halfH, v.Y(), 1e-4)
	require.InDelta(t, -20, v.Z(), 1e-4)
}

func TestComposeIdentityRoundTrip(t *testing.T) {
	c := testComposer(t)
	anchors := []track.Anchor{{StickerID: 1, X: 0.5, Y: 0.5, Scale: 1}}
	stickers := []sticker.Sticker{sticker.NewSticker(1, 0.5, 0.5)}

	batches := c.Compose(anchors, stickers, IdentityOrientation())
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Posed, 1)

	m := batches[0].Posed[0].Matrix
	trans := m.Col(3)
	require.InDelta(t, 0, trans.X(), 1e-6)
	require.InDelta(t, 0, trans.Y(), 1e-6)
	require.InDelta(t, DefaultRefDepth, trans.Z(), 1e-6)
	require.InDelta(t, 1, trans.W(), 1e-6)
	// Bottom row is 0 0 0 1
	require.InDelta(t, 0, m.At(3, 0), 1e-6)
	require.InDelta(t, 0, m.At(3, 1), 1e-6)
	require.InDelta(t, 0, m.At(3, 2), 1e-6)
	require.InDelta(t, 1, m.At(3, 3), 1e-6)
}

func TestComposeSpriteScalePreset(t *testing.T) {
	c := testComposer(t)
	anchors := []track.Anchor{{StickerID: 1, X: 0.5, Y: 0.5, Scale: 1}}
	stickers := []sticker.Sticker{sticker.NewSticker(1, 0.5, 0.5)}

	m := c.Compose(anchors, stickers, IdentityOrientation())[0].Posed[0].Matrix
	p := PresetFor(sticker.RenderSprite)
	require.InDelta(t, p.Scale, m.At(0, 0), 1e-6)
	require.InDelta(t, p.Scale, m.At(1, 1), 1e-6)
	require.InDelta(t, p.Scale, m.At(2, 2), 1e-6)
}

func TestComposeSpriteAspectOverride(t *testing.T) {
	c := testComposer(t)
	c.SetAssetAspect(sticker.RenderSprite, 2)
	anchors := []track.Anchor{{StickerID: 1, X: 0.5, Y: 0.5, Scale: 1}}
	stickers := []sticker.Sticker{sticker.NewSticker(1, 0.5, 0.5)}

	m := c.Compose(anchors, stickers, IdentityOrientation())[0].Posed[0].Matrix
	p := PresetFor(sticker.RenderSprite)
	require.InDelta(t, 2*p.Scale, m.At(0, 0), 1e-6)
	require.InDelta(t, p.Scale, m.At(1, 1), 1e-6)
}

func TestComposeUserRotationDirection(t *testing.T) {
	c := testComposer(t)
	theta := float32(math32.Pi / 2)
	anchors := []track.Anchor{{StickerID: 1, X: 0.5, Y: 0.5, Scale: 1}}
	st := sticker.NewSticker(1, 0.5, 0.5)
	st.Rotation = theta

	m := c.Compose(anchors, []sticker.Sticker{st}, IdentityOrientation())[0].Posed[0].Matrix
	p := PresetFor(sticker.RenderSprite)
	// RotY(-theta): at theta=pi/2 the X axis image is (0, 0, +1) scaled
	require.InDelta(t, 0, m.At(0, 0), 1e-6)
	require.InDelta(t, p.Scale, m.At(2, 0), 1e-6)
}

func TestComposeRobotUpright(t *testing.T) {
	c := testComposer(t)
	anchors := []track.Anchor{{StickerID: 1, X: 0.5, Y: 0.5, Scale: 1}}
	st := sticker.NewSticker(1, 0.5, 0.5)
	st.Render = sticker.RenderRobot

	m := c.Compose(anchors, []sticker.Sticker{st}, IdentityOrientation())[0].Posed[0].Matrix
	// RotX(pi/2) maps the asset's Y axis onto +Z
	require.InDelta(t, 0, m.At(1, 1), 1e-6)
	require.InDelta(t, 1, m.At(2, 1), 1e-6)
	require.InDelta(t, 1, m.At(0, 0), 1e-6)
}

func TestComposeDeviceOrientation(t *testing.T) {
	c := testComposer(t)
	yaw := float32(0.4)
	anchors := []track.Anchor{{StickerID: 1, X: 0.5, Y: 0.5, Scale: 1}}
	st := sticker.NewSticker(1, 0.5, 0.5)

	// A pure yaw from the Euler path and the matrix path must agree
	fromEuler := c.Compose(anchors, []sticker.Sticker{st}, OrientationFromEuler(yaw, 0, 0))[0].Posed[0].Matrix
	cos, sin := math32.Cos(yaw), math32.Sin(yaw)
	rowMajor := [9]float32{
		cos, 0, sin,
		0, 1, 0,
		-sin, 0, cos,
	}
	fromMatrix := c.Compose(anchors, []sticker.Sticker{st}, OrientationFromMatrix(rowMajor))[0].Posed[0].Matrix
	for i := 0; i < 16; i++ {
		require.InDelta(t, fromEuler[i], fromMatrix[i], 1e-5, "element %v", i)
	}
}

func TestBatchGroupingStability(t *testing.T) {
	c := testComposer(t)

	mk := func(id int32, r sticker.Render) ([]track.Anchor, []sticker.Sticker) {
		st := sticker.NewSticker(id, 0.5, 0.5)
		st.Render = r
		return []track.Anchor{{StickerID: id, X: 0.5, Y: 0.5, Scale: 1}}, []sticker.Sticker{st}
	}
	a1, s1 := mk(1, sticker.RenderSprite)
	a2, s2 := mk(2, sticker.RenderRobot)
	a3, s3 := mk(3, sticker.RenderSprite)

	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}}
	allAnchors := [][]track.Anchor{a1, a2, a3}
	allStickers := [][]sticker.Sticker{s1, s2, s3}

	for _, order := range orders {
		anchors := []track.Anchor{}
		stickers := []sticker.Sticker{}
		for _, i := range order {
			anchors = append(anchors, allAnchors[i]...)
			stickers = append(stickers, allStickers[i]...)
		}
		batches := c.Compose(anchors, stickers, IdentityOrientation())
		require.Len(t, batches, 2, "order %v", order)
		require.Equal(t, sticker.RenderSprite, batches[0].Render)
		require.Equal(t, sticker.RenderRobot, batches[1].Render)
		require.Len(t, batches[0].Posed, 2)
		require.Len(t, batches[1].Posed, 1)
		ids := map[int32]bool{}
		for _, p := range batches[0].Posed {
			ids[p.StickerID] = true
		}
		require.True(t, ids[1] && ids[3])
		require.Equal(t, int32(2), batches[1].Posed[0].StickerID)
	}
}

func TestComposeJoinMiss(t *testing.T) {
	c := testComposer(t)
	anchors := []track.Anchor{{StickerID: 9, X: 0.5, Y: 0.5, Scale: 1}}

	batches := c.Compose(anchors, nil, IdentityOrientation())
	require.Len(t, batches, 1)
	require.Equal(t, sticker.RenderSprite, batches[0].Render)
	trans := batches[0].Posed[0].Matrix.Col(3)
	require.InDelta(t, DefaultRefDepth, trans.Z(), 1e-6)
}

func TestScreenBox(t *testing.T) {
	c := testComposer(t)
	a := track.Anchor{StickerID: 1, X: 0.4, Y: 0.6, Scale: 1}
	st := sticker.NewSticker(1, 0.4, 0.6)

	box := c.ScreenBox(a, st)
	require.InDelta(t, 0.4, box.MidX(), 1e-6)
	require.InDelta(t, 0.6, box.MidY(), 1e-6)
	require.Greater(t, box.Width(), float32(0))
	require.Greater(t, box.Height(), float32(0))

	// Doubling the user scale doubles the footprint
	st2 := st
	st2.Scale = 2
	box2 := c.ScreenBox(a, st2)
	require.InDelta(t, 2*box.Width(), box2.Width(), 1e-5)

	// Doubling the anchor scale (moving away) halves it
	a2 := a
	a2.Scale = 2
	box3 := c.ScreenBox(a2, st)
	require.InDelta(t, box.Width()/2, box3.Width(), 1e-5)
}
