package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/googleinterns/instant-motion-tracking/pkg/boxtrack"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/render"
	"github.com/googleinterns/instant-motion-tracking/pkg/replay"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
	"github.com/stretchr/testify/require"
)

const stickerOneMsg = "(sticker_id:1,sticker_anchor_x:0.25,sticker_anchor_y:0.25,sticker_rotation:0.0,sticker_scaling:1.0,sticker_render_id:0)"

func testPipeline(t *testing.T, cfg Config) (*Pipeline, *render.Recorder) {
	log := logs.NewTestingLog(t)
	rec := render.NewRecorder()
	sim := boxtrack.NewSim(log, boxtrack.DefaultSimParams())
	p, err := NewPipeline(log, cfg, sim, rec)
	require.NoError(t, err)
	return p, rec
}

func TestPipelineEndToEnd(t *testing.T) {
	p, rec := testPipeline(t, DefaultConfig())

	state, err := p.Step(FrameInput{PTS: 0, Message: stickerOneMsg})
	require.NoError(t, err)

	// Frame 0: the anchor is the raw placement, and the tracker is told to
	// start a box around it.
	require.Len(t, state.Stickers, 1)
	require.Equal(t, []track.Anchor{{StickerID: 1, X: 0.25, Y: 0.25, Scale: 1}}, state.Anchors)
	require.Len(t, state.Commands, 2)
	require.Equal(t, track.CmdCancel, state.Commands[0].Op)
	require.Equal(t, track.CmdStart, state.Commands[1].Op)
	require.Equal(t, track.Box{Left: 0.15, Right: 0.35, Top: 0.15, Bottom: 0.35}, state.Commands[1].Box)
	require.Len(t, state.Regions, 1)

	require.Len(t, state.Batches, 1)
	require.Equal(t, sticker.RenderSprite, state.Batches[0].Render)
	m := state.Batches[0].Posed[0].Matrix
	require.InDelta(t, 2.529407, m.At(0, 3), 1e-4)
	require.InDelta(t, 3.372542, m.At(1, 3), 1e-4)
	require.InDelta(t, -10.0, m.At(2, 3), 1e-4)
	require.InDelta(t, 0.3, m.At(0, 0), 1e-5)

	require.NotNil(t, state.Frame)
	require.Equal(t, int64(0), state.Frame.PTS)
	require.Len(t, rec.Submitted, 1)

	// Frame 1: the reconciler sees the region started on frame 0, so the
	// anchor switches to the tracked path and no commands are issued.
	state, err = p.Step(FrameInput{PTS: 33, Message: stickerOneMsg})
	require.NoError(t, err)
	require.Empty(t, state.Commands)
	require.Len(t, state.Anchors, 1)
	require.InDelta(t, 0.25, state.Anchors[0].X, 1e-5)
	require.InDelta(t, 0.25, state.Anchors[0].Y, 1e-5)
	require.InDelta(t, 1.0, state.Anchors[0].Scale, 1e-5)
}

func TestPipelineMoveResetsAnchor(t *testing.T) {
	p, _ := testPipeline(t, DefaultConfig())
	_, err := p.Step(FrameInput{PTS: 0, Message: stickerOneMsg})
	require.NoError(t, err)

	// Moving the sticker restarts tracking at the new position.
	moved := []sticker.Sticker{{ID: 1, X: 0.6, Y: 0.6, Scale: 1, Render: sticker.RenderSprite}}
	state, err := p.Step(FrameInput{PTS: 33, Stickers: moved, ResetID: sticker.NoReset})
	require.NoError(t, err)
	require.Len(t, state.Commands, 2)
	require.Equal(t, track.CmdCancel, state.Commands[0].Op)
	require.Equal(t, track.CmdStart, state.Commands[1].Op)
	require.Equal(t, []track.Anchor{{StickerID: 1, X: 0.6, Y: 0.6, Scale: 1}}, state.Anchors)
}

func TestPipelineDecodeFailure(t *testing.T) {
	p, _ := testPipeline(t, DefaultConfig())
	state, err := p.Step(FrameInput{PTS: 0, Message: stickerOneMsg})
	require.NoError(t, err)
	prev := state.Stickers

	state, err = p.Step(FrameInput{PTS: 33, Message: "(sticker_id:banana)"})
	require.NoError(t, err)
	require.Equal(t, prev, state.Stickers)
	require.Len(t, state.Anchors, 1)
	require.Equal(t, int64(1), p.Stats().DecodeErrors)
}

func TestPipelineTimestampRegression(t *testing.T) {
	p, _ := testPipeline(t, DefaultConfig())
	_, err := p.Step(FrameInput{PTS: 100})
	require.NoError(t, err)
	_, err = p.Step(FrameInput{PTS: 50})
	require.Error(t, err)
	_, err = p.Step(FrameInput{PTS: 100})
	require.NoError(t, err)
}

func TestPipelineRenderFailure(t *testing.T) {
	p, rec := testPipeline(t, DefaultConfig())
	_, err := p.Step(FrameInput{PTS: 0, Message: stickerOneMsg})
	require.NoError(t, err)

	rec.Err = &deviceLost{}
	_, err = p.Step(FrameInput{PTS: 33, Message: stickerOneMsg})
	require.Error(t, err)
	require.Equal(t, int64(1), p.Stats().RenderErrors)
	require.Equal(t, int64(0), p.LastState().PTS)

	// Tracking carried on through the dropped frame
	rec.Err = nil
	state, err := p.Step(FrameInput{PTS: 66, Message: stickerOneMsg})
	require.NoError(t, err)
	require.Empty(t, state.Commands)
	require.InDelta(t, 1.0, state.Anchors[0].Scale, 1e-5)
}

func TestPipelineWatchers(t *testing.T) {
	p, _ := testPipeline(t, DefaultConfig())
	ch1 := p.AddWatcher()
	ch2 := p.AddWatcher()

	_, err := p.Step(FrameInput{PTS: 0, Message: stickerOneMsg})
	require.NoError(t, err)
	require.Equal(t, int64(0), (<-ch1).PTS)
	require.Equal(t, int64(0), (<-ch2).PTS)

	p.RemoveWatcher(ch1)
	_, err = p.Step(FrameInput{PTS: 33, Message: stickerOneMsg})
	require.NoError(t, err)
	require.Equal(t, 0, len(ch1))
	require.Equal(t, int64(33), (<-ch2).PTS)
}

func TestPipelineSessionLogAndReplay(t *testing.T) {
	log := logs.NewTestingLog(t)
	fn := filepath.Join(t.TempDir(), "session.jsonl")
	cfg := DefaultConfig()
	cfg.SessionLogFilename = fn

	sim := boxtrack.NewSim(log, boxtrack.DefaultSimParams())
	p, err := NewPipeline(log, cfg, sim, nil)
	require.NoError(t, err)

	inputs := []FrameInput{
		{PTS: 0, Message: stickerOneMsg},
		{PTS: 33, Stickers: []sticker.Sticker{
			{ID: 1, X: 0.25, Y: 0.25, Scale: 1, Render: sticker.RenderSprite},
			{ID: 2, X: 0.7, Y: 0.3, Scale: 1, Render: sticker.RenderRobot},
		}, ResetID: sticker.NoReset},
		{PTS: 66, Stickers: []sticker.Sticker{
			{ID: 1, X: 0.25, Y: 0.25, Rotation: 0.5, Scale: 1.2, Render: sticker.RenderSprite},
			{ID: 2, X: 0.7, Y: 0.3, Scale: 1, Render: sticker.RenderRobot},
		}, ResetID: sticker.NoReset, Orientation: pose.OrientationFromEuler(0.2, 0, 0)},
	}
	finals := []track.Anchor{}
	for _, in := range inputs {
		state, err := p.Step(in)
		require.NoError(t, err)
		finals = state.Anchors
	}
	require.NoError(t, p.Close())

	header, records, err := replay.ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, cfg.BoxEdge, header.BoxEdge)
	require.Len(t, records, 3)
	// Directly supplied stickers are re-encoded into the wire form
	require.Contains(t, records[1].Message, "sticker_id:2")

	// Re-running the log through a fresh pipeline and tracker reproduces
	// the same anchors.
	cfg2 := DefaultConfig()
	sim2 := boxtrack.NewSim(log, boxtrack.DefaultSimParams())
	p2, err := NewPipeline(log, cfg2, sim2, nil)
	require.NoError(t, err)
	var replayed []track.Anchor
	for i := range records {
		state, err := p2.Step(FrameInput{
			PTS:         records[i].PTS,
			Message:     records[i].Message,
			Orientation: records[i].DeviceOrientation(),
		})
		require.NoError(t, err)
		replayed = state.Anchors
	}
	require.Equal(t, finals, replayed)
}

func TestPipelineHistoryAndRecent(t *testing.T) {
	p, _ := testPipeline(t, DefaultConfig())
	for i := 0; i < 3; i++ {
		_, err := p.Step(FrameInput{PTS: int64(i) * 33, Message: stickerOneMsg})
		require.NoError(t, err)
	}
	hist := p.History(1)
	require.Len(t, hist, 3)
	require.Equal(t, track.Anchor{StickerID: 1, X: 0.25, Y: 0.25, Scale: 1}, hist[0])
	require.Nil(t, p.History(99))

	recent := p.RecentSamples()
	require.Len(t, recent, 3)
	require.Equal(t, 2, recent[0].Commands)
	require.Equal(t, 0, recent[1].Commands)

	snap := p.Stats()
	require.Equal(t, int64(3), snap.Frames)
	require.InDelta(t, 2.0/3.0, snap.AvgCommands, 1e-9)
}

func TestPipelineEmptyThenRemove(t *testing.T) {
	p, _ := testPipeline(t, DefaultConfig())
	state, err := p.Step(FrameInput{PTS: 0})
	require.NoError(t, err)
	require.Empty(t, state.Stickers)
	require.Empty(t, state.Commands)
	require.Empty(t, state.Regions)

	_, err = p.Step(FrameInput{PTS: 33, Message: stickerOneMsg})
	require.NoError(t, err)

	// Deleting the sticker cancels its region
	state, err = p.Step(FrameInput{PTS: 66, Stickers: []sticker.Sticker{}, ResetID: sticker.NoReset})
	require.NoError(t, err)
	require.Len(t, state.Commands, 1)
	require.Equal(t, track.CmdCancel, state.Commands[0].Op)
	require.Equal(t, int32(1), state.Commands[0].ID)
	require.Empty(t, state.Regions)
}

func TestPipelineConfigValidation(t *testing.T) {
	log := logs.NewTestingLog(t)
	sim := boxtrack.NewSim(log, boxtrack.DefaultSimParams())

	_, err := NewPipeline(log, DefaultConfig(), nil, nil)
	require.Error(t, err)

	cfg := DefaultConfig()
	cfg.BoxEdge = 0
	_, err = NewPipeline(log, cfg, sim, nil)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Intrinsics.Aspect = -1
	_, err = NewPipeline(log, cfg, sim, nil)
	require.Error(t, err)
}

type deviceLost struct{}

func (e *deviceLost) Error() string { return "render device lost" }
