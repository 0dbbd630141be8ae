package server

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/googleinterns/instant-motion-tracking/pkg/pipeline"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
)

// StartDriver begins stepping the pipeline at the configured frame rate.
// Each frame consumes the current scene and any pending re-anchor request.
func (s *Server) StartDriver() {
	if s.driverStop != nil {
		return
	}
	s.driverStop = make(chan bool)
	s.driverDone = make(chan bool)
	go s.driveLoop()
}

func (s *Server) StopDriver() {
	if s.driverStop == nil {
		return
	}
	close(s.driverStop)
	<-s.driverDone
	s.driverStop = nil
	s.driverDone = nil
}

func (s *Server) driveLoop() {
	defer close(s.driverDone)
	interval := time.Second / time.Duration(s.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()
	s.Log.Infof("Frame driver running at %v fps", s.fps)
	for {
		select {
		case <-s.driverStop:
			s.Log.Infof("Frame driver stopped")
			return
		case <-ticker.C:
			pts := time.Since(start).Milliseconds()
			if s.demo {
				s.swayOrientation(pts)
				s.demoScript(pts)
			}
			if err := s.StepFrame(pts); err != nil {
				s.Log.Errorf("%v", err)
			}
		}
	}
}

// StepFrame runs a single frame through the pipeline with the live scene.
// The driver calls this at frame rate; tests call it directly.
func (s *Server) StepFrame(pts int64) error {
	stickers, resetID := s.consumeScene()
	_, err := s.Pipeline.Step(pipeline.FrameInput{
		PTS:         pts,
		Stickers:    stickers,
		ResetID:     resetID,
		Orientation: s.Orientation(),
	})
	return err
}

// consumeScene snapshots the sticker list and takes the pending re-anchor
// request, which fires for exactly one frame.
func (s *Server) consumeScene() ([]sticker.Sticker, int32) {
	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	stickers := make([]sticker.Sticker, len(s.stickers))
	copy(stickers, s.stickers)
	resetID := s.resetID
	s.resetID = sticker.NoReset
	return stickers, resetID
}

func (s *Server) Orientation() pose.Orientation {
	s.orientLock.Lock()
	defer s.orientLock.Unlock()
	return s.orientation
}

func (s *Server) SetOrientation(o pose.Orientation) {
	s.orientLock.Lock()
	defer s.orientLock.Unlock()
	s.orientation = o
}

// swayOrientation applies a slow sinusoidal yaw and pitch, imitating a
// phone held in a hand.
func (s *Server) swayOrientation(pts int64) {
	t := float32(pts) / 1000
	yaw := 0.08 * math32.Sin(t*0.7)
	pitch := 0.05 * math32.Sin(t*0.43)
	s.SetOrientation(pose.OrientationFromEuler(yaw, pitch, 0))
}

// demoScript occasionally drags the first sticker and re-anchors the second,
// so the restart paths of the reconciler run without a client.
func (s *Server) demoScript(pts int64) {
	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	if len(s.stickers) == 0 {
		return
	}
	if pts-s.demoLastDrag >= 9000 {
		s.demoLastDrag = pts
		t := float32(pts) / 9000
		s.stickers[0].X = 0.3 + 0.25*math32.Sin(t)
		s.stickers[0].Y = 0.45 + 0.15*math32.Cos(t*1.3)
	}
	if len(s.stickers) > 1 && pts-s.demoLastReset >= 13000 {
		s.demoLastReset = pts
		s.resetID = s.stickers[1].ID
	}
}
