// Package server exposes the tracking pipeline over HTTP: live frame state,
// sticker edits, scene persistence, a software overlay stream, and a
// websocket feed of per-frame state.
package server

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/golang/geo/r2"
	"github.com/googleinterns/instant-motion-tracking/pkg/boxtrack"
	"github.com/googleinterns/instant-motion-tracking/pkg/pipeline"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/render"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/server/stickerdb"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Config is everything needed to stand up a server.
type Config struct {
	DBFilename         string
	OverlayWidth       int
	OverlayHeight      int
	FPS                int
	SessionLogFilename string
	AssetDir           string

	// FOVDegrees, Aspect and BoxEdge override the stored settings when > 0
	FOVDegrees float32
	Aspect     float32
	BoxEdge    float32

	// Demo seeds the scene with a couple of stickers, sways the device
	// orientation, and occasionally drags and re-anchors them, so there is
	// something to look at without a client.
	Demo bool
}

func DefaultConfig() Config {
	return Config{
		DBFilename:    "imtrack.sqlite",
		OverlayWidth:  480,
		OverlayHeight: 640,
		FPS:           30,
	}
}

type Server struct {
	Log              logs.Log
	DB               *stickerdb.StickerDB
	Pipeline         *pipeline.Pipeline
	Overlay          *render.Overlay
	ShutdownComplete chan bool // Closed when we are done shutting down

	signalIn   chan os.Signal
	httpServer *http.Server
	httpRouter *httprouter.Router
	wsUpgrader websocket.Upgrader

	// sceneLock guards the live sticker scene below
	sceneLock sync.Mutex
	stickers  []sticker.Sticker
	resetID   int32
	idAlloc   *sticker.IDAllocator
	sceneName string

	orientLock  sync.Mutex
	orientation pose.Orientation

	driverStop    chan bool
	driverDone    chan bool
	fps           int
	demo          bool
	demoLastDrag  int64
	demoLastReset int64
}

func NewServer(logger logs.Log, cfg Config) (*Server, error) {
	db, err := stickerdb.NewStickerDB(logger, cfg.DBFilename)
	if err != nil {
		return nil, err
	}

	fovDeg := cfg.FOVDegrees
	if fovDeg <= 0 {
		fovDeg = db.FloatVariable(stickerdb.VarVerticalFOVDegrees, 68)
	}
	aspect := cfg.Aspect
	if aspect <= 0 {
		aspect = db.FloatVariable(stickerdb.VarAspect, pose.DefaultAspect)
	}
	intrinsics, err := pose.NewIntrinsics(fovDeg*math.Pi/180, aspect)
	if err != nil {
		return nil, fmt.Errorf("Failed to create server: %w", err)
	}

	pipeCfg := pipeline.DefaultConfig()
	pipeCfg.Intrinsics = intrinsics
	if cfg.BoxEdge > 0 {
		pipeCfg.BoxEdge = cfg.BoxEdge
	} else {
		pipeCfg.BoxEdge = db.FloatVariable(stickerdb.VarBoxEdge, pipeCfg.BoxEdge)
	}
	pipeCfg.SessionLogFilename = cfg.SessionLogFilename

	if cfg.OverlayWidth <= 0 || cfg.OverlayHeight <= 0 {
		cfg.OverlayWidth = DefaultConfig().OverlayWidth
		cfg.OverlayHeight = DefaultConfig().OverlayHeight
	}
	overlay, err := render.NewOverlay(logger, intrinsics, cfg.OverlayWidth, cfg.OverlayHeight)
	if err != nil {
		return nil, err
	}

	simParams := boxtrack.DefaultSimParams()
	if cfg.Demo {
		// Demo regions drift and decay a little, so tracked anchors visibly move
		simParams.Drift = r2.Point{X: 0.0004, Y: -0.0002}
		simParams.Shrink = 0.9995
		simParams.Jitter = 0.0008
		simParams.DropEvery = 300
	}
	tracker := boxtrack.NewSim(logger, simParams)

	pipe, err := pipeline.NewPipeline(logger, pipeCfg, tracker, overlay)
	if err != nil {
		return nil, err
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = DefaultConfig().FPS
	}

	s := &Server{
		Log:              logger,
		DB:               db,
		Pipeline:         pipe,
		Overlay:          overlay,
		ShutdownComplete: make(chan bool),
		stickers:         []sticker.Sticker{},
		resetID:          sticker.NoReset,
		idAlloc:          sticker.NewIDAllocator(),
		fps:              fps,
		demo:             cfg.Demo,
	}
	s.orientation = pose.IdentityOrientation()

	if cfg.AssetDir != "" {
		s.loadAssets(cfg.AssetDir)
	}
	if err := s.restoreActiveScene(); err != nil {
		logger.Warnf("Failed to restore active scene: %v", err)
	}
	if cfg.Demo && len(s.stickers) == 0 {
		s.seedDemoScene()
	}
	s.setupHttpRoutes()
	return s, nil
}

// loadAssets registers per-render textures and animations found in dir.
// Missing files are fine; the overlay draws stand-in quads.
func (s *Server) loadAssets(dir string) {
	for r := sticker.RenderSprite; r <= sticker.RenderDino; r++ {
		texture := filepath.Join(dir, r.String()+".png")
		if _, err := os.Stat(texture); err == nil {
			if err := s.Overlay.LoadTexture(r, texture); err != nil {
				s.Log.Warnf("%v", err)
			} else if aspect := s.Overlay.TextureAspect(r); aspect > 0 {
				s.Pipeline.Composer().SetAssetAspect(r, aspect)
			}
		}
		animation := filepath.Join(dir, r.String()+".bin")
		if _, err := os.Stat(animation); err == nil {
			if err := s.Overlay.LoadAnimation(r, animation); err != nil {
				s.Log.Warnf("%v", err)
			}
		}
	}
}

func (s *Server) restoreActiveScene() error {
	name, err := s.DB.GetVariable(stickerdb.VarActiveScene)
	if err != nil || name == "" {
		return err
	}
	scene, err := s.DB.GetSceneByName(name)
	if err != nil {
		return err
	}
	if scene == nil {
		s.Log.Warnf("Active scene '%v' no longer exists", name)
		return nil
	}
	s.applyScene(scene)
	s.Log.Infof("Restored scene '%v' with %v stickers", scene.Name, len(scene.StickerList()))
	return nil
}

// applyScene replaces the live scene with a saved one.
func (s *Server) applyScene(scene *stickerdb.Scene) {
	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	s.stickers = scene.StickerList()
	s.resetID = sticker.NoReset
	s.idAlloc.Seed(scene.LastID)
	s.sceneName = scene.Name
}

func (s *Server) seedDemoScene() {
	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	first := sticker.NewSticker(s.idAlloc.Next(), 0.3, 0.45)
	second := sticker.NewSticker(s.idAlloc.Next(), 0.68, 0.6)
	second.Render = sticker.RenderRobot
	s.stickers = []sticker.Sticker{first, second}
}

// Router returns the HTTP handler, for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.httpRouter
}

// port example: ":8080"
func (s *Server) ListenHTTP(port string) error {
	s.Log.Infof("Listening on %v", port)
	s.httpServer = &http.Server{
		Addr:    port,
		Handler: s.httpRouter,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) ListenForKillSignals() {
	s.signalIn = make(chan os.Signal, 1)
	signal.Notify(s.signalIn, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-s.signalIn
		if ok {
			s.Log.Infof("Received OS signal '%v'. Shutting down", sig.String())
			s.Shutdown()
		}
	}()
}

func (s *Server) Shutdown() {
	s.Log.Infof("Shutdown")
	if s.signalIn != nil {
		signal.Stop(s.signalIn)
		close(s.signalIn)
	}
	s.StopDriver()
	if s.httpServer != nil {
		s.Log.Infof("Closing HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := s.httpServer.Shutdown(ctx)
		defer cancel()
		if err != nil {
			s.Log.Warnf("HTTP server shutdown error: %v", err)
		}
	}
	if err := s.Pipeline.Close(); err != nil {
		s.Log.Warnf("Pipeline close error: %v", err)
	}
	s.Log.Infof("Shutdown complete")
	s.Log.Close()
	close(s.ShutdownComplete)
}
