package pipeline

import (
	"sync"
	"time"
)

// Stats are cumulative pipeline counters since startup.
type Stats struct {
	lock         sync.Mutex
	frames       int64
	commands     int64
	decodeErrors int64
	renderErrors int64
	processTotal time.Duration
}

type StatsSnapshot struct {
	Frames       int64   `json:"frames"`
	Commands     int64   `json:"commands"`
	DecodeErrors int64   `json:"decodeErrors"`
	RenderErrors int64   `json:"renderErrors"`
	AvgCommands  float64 `json:"avgCommands"`
	AvgProcessMS float64 `json:"avgProcessMS"`
}

func (s *Stats) addFrame(commands int, elapsed time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.frames++
	s.commands += int64(commands)
	s.processTotal += elapsed
}

func (s *Stats) addDecodeError() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.decodeErrors++
}

func (s *Stats) addRenderError() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.renderErrors++
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	snap := StatsSnapshot{
		Frames:       s.frames,
		Commands:     s.commands,
		DecodeErrors: s.decodeErrors,
		RenderErrors: s.renderErrors,
	}
	if s.frames != 0 {
		snap.AvgCommands = float64(s.commands) / float64(s.frames)
		snap.AvgProcessMS = s.processTotal.Seconds() * 1000 / float64(s.frames)
	}
	return snap
}
