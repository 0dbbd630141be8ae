// Package pipeline wires sticker intake, anchor-tracker reconciliation,
// pose composition and render submission into a single per-frame step.
//
// The pipeline owns the tracker feedback loop: regions produced by the
// tracker at frame N are consumed by the reconciler at frame N+1. That one
// frame of lag is a contract, not an accident, and the tests pin it down.
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/bmharper/ringbuffer"
	"github.com/cyclopcam/logs"
	"github.com/googleinterns/instant-motion-tracking/pkg/boxtrack"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/render"
	"github.com/googleinterns/instant-motion-tracking/pkg/replay"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
)

const recentSampleCount = 256

type Config struct {
	Intrinsics  pose.Intrinsics `json:"intrinsics"`
	BoxEdge     float32         `json:"boxEdge"`
	RefDepth    float32         `json:"refDepth"`
	HistorySize int             `json:"historySize"`

	// SessionLogFilename, when set, records every frame's inputs for
	// offline replay.
	SessionLogFilename string `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		Intrinsics:  pose.DefaultIntrinsics(),
		BoxEdge:     track.DefaultParams().BoxEdge,
		RefDepth:    pose.DefaultParams().RefDepth,
		HistorySize: 256,
	}
}

type Pipeline struct {
	Log        logs.Log
	config     Config
	reconciler *track.Reconciler
	composer   *pose.Composer
	tracker    boxtrack.Tracker
	renderer   render.Renderer
	sessionLog *replay.Writer

	// lock guards all per-frame state. Step is effectively serialized.
	lock           sync.Mutex
	lastPTS        int64
	prevStickers   []sticker.Sticker
	pendingRegions []track.Region
	lastState      *FrameState
	history        map[int32]*ringbuffer.RingP[track.Anchor]
	recent         ringbuffer.RingP[FrameSample]

	watchersLock sync.RWMutex
	watchers     []chan *FrameState

	stats Stats
}

// NewPipeline creates a pipeline. renderer may be nil for a headless run
// (replay, tests of the tracking path).
func NewPipeline(log logs.Log, cfg Config, tracker boxtrack.Tracker, renderer render.Renderer) (*Pipeline, error) {
	if tracker == nil {
		return nil, fmt.Errorf("Failed to create pipeline: no tracker")
	}
	if !(cfg.BoxEdge > 0 && cfg.BoxEdge <= 1) {
		return nil, fmt.Errorf("Failed to create pipeline: invalid box edge %v", cfg.BoxEdge)
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	composer, err := pose.NewComposer(log, cfg.Intrinsics, pose.Params{RefDepth: cfg.RefDepth})
	if err != nil {
		return nil, fmt.Errorf("Failed to create pipeline: %w", err)
	}
	p := &Pipeline{
		Log:        log,
		config:     cfg,
		reconciler: track.NewReconciler(log, track.Params{BoxEdge: cfg.BoxEdge}),
		composer:   composer,
		tracker:    tracker,
		renderer:   renderer,
		history:    map[int32]*ringbuffer.RingP[track.Anchor]{},
		recent:     ringbuffer.NewRingP[FrameSample](recentSampleCount),
	}
	if cfg.SessionLogFilename != "" {
		header := replay.Header{
			StartedAt:  time.Now().UnixMilli(),
			Intrinsics: cfg.Intrinsics,
			BoxEdge:    cfg.BoxEdge,
			RefDepth:   cfg.RefDepth,
		}
		p.sessionLog, err = replay.NewWriter(log, cfg.SessionLogFilename, header)
		if err != nil {
			return nil, fmt.Errorf("Failed to create pipeline: %w", err)
		}
	}
	return p, nil
}

// Step runs one frame through the whole pipeline. Timestamps must not go
// backwards. A render failure drops the frame: tracking state has already
// advanced, but no state is published for this frame.
func (p *Pipeline) Step(input FrameInput) (*FrameState, error) {
	start := time.Now()
	p.lock.Lock()
	defer p.lock.Unlock()

	if input.PTS < p.lastPTS {
		return nil, fmt.Errorf("Frame timestamp %v is older than the previous frame %v", input.PTS, p.lastPTS)
	}
	p.lastPTS = input.PTS

	if input.Orientation == (pose.Orientation{}) {
		input.Orientation = pose.IdentityOrientation()
	}

	stickers := input.Stickers
	resetID := input.ResetID
	msg := input.Message
	if msg != "" {
		var err error
		stickers, resetID, err = sticker.DecodeString(msg)
		if err != nil {
			p.stats.addDecodeError()
			p.Log.Warnf("Bad sticker message at %v, keeping previous stickers: %v", input.PTS, err)
			stickers = p.prevStickers
			resetID = sticker.NoReset
		}
	}
	if stickers == nil {
		stickers = []sticker.Sticker{}
	}

	if p.sessionLog != nil {
		if msg == "" {
			msg = sticker.EncodeString(stickers, resetID)
		}
		rec := replay.Record{PTS: input.PTS, Message: msg, Orientation: input.Orientation.RowMajor()}
		if err := p.sessionLog.Write(&rec); err != nil {
			p.Log.Errorf("%v", err)
		}
	}

	// Anchors come from the previous frame's regions. The tracker's output
	// for this frame lands in pendingRegions, for the next frame.
	anchors, commands := p.reconciler.Frame(stickers, resetID, p.pendingRegions, input.PTS)
	regions, err := p.tracker.Step(commands, input.PTS)
	if err != nil {
		return nil, fmt.Errorf("Failed to advance tracker at %v: %w", input.PTS, err)
	}
	p.pendingRegions = regions

	batches := p.composer.Compose(anchors, stickers, input.Orientation)

	p.prevStickers = stickers
	for _, a := range anchors {
		p.historyAdd(a)
	}
	p.stats.addFrame(len(commands), time.Since(start))

	state := &FrameState{
		PTS:      input.PTS,
		Stickers: stickers,
		Anchors:  anchors,
		Commands: commands,
		Regions:  regions,
		Batches:  batches,
	}
	if p.renderer != nil {
		frame, err := p.renderer.Submit(input.PTS, batches)
		if err != nil {
			p.stats.addRenderError()
			return nil, fmt.Errorf("Failed to render frame %v: %w", input.PTS, err)
		}
		state.Frame = frame
	}

	p.recent.Add(FrameSample{
		PTS:       input.PTS,
		Commands:  len(commands),
		Anchors:   len(anchors),
		ProcessMS: time.Since(start).Seconds() * 1000,
	})
	p.lastState = state
	p.sendToWatchers(state)
	return state, nil
}

func (p *Pipeline) historyAdd(a track.Anchor) {
	ring := p.history[a.StickerID]
	if ring == nil {
		r := ringbuffer.NewRingP[track.Anchor](p.config.HistorySize)
		ring = &r
		p.history[a.StickerID] = ring
	}
	ring.Add(a)
}

// History returns the recorded anchors of a sticker, oldest first.
func (p *Pipeline) History(stickerID int32) []track.Anchor {
	p.lock.Lock()
	defer p.lock.Unlock()
	ring := p.history[stickerID]
	if ring == nil {
		return nil
	}
	out := make([]track.Anchor, 0, ring.Len())
	for i := 0; i < ring.Len(); i++ {
		out = append(out, ring.Peek(i))
	}
	return out
}

// RecentSamples returns per-frame figures for the most recent frames,
// oldest first.
func (p *Pipeline) RecentSamples() []FrameSample {
	p.lock.Lock()
	defer p.lock.Unlock()
	out := make([]FrameSample, 0, p.recent.Len())
	for i := 0; i < p.recent.Len(); i++ {
		out = append(out, p.recent.Peek(i))
	}
	return out
}

// LastState returns the most recently published frame state, or nil before
// the first successful frame.
func (p *Pipeline) LastState() *FrameState {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.lastState
}

func (p *Pipeline) Config() Config {
	return p.config
}

// Composer exposes the pose composer, for asset aspect setup and for
// screen-space queries (tap hit testing, overlays).
func (p *Pipeline) Composer() *pose.Composer {
	return p.composer
}

func (p *Pipeline) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}

// Close flushes the session log, if recording.
func (p *Pipeline) Close() error {
	if p.sessionLog != nil {
		return p.sessionLog.Close()
	}
	return nil
}
