package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/akamensky/argparse"
	"github.com/coreos/go-systemd/daemon"
	"github.com/cyclopcam/logs"
	"github.com/googleinterns/instant-motion-tracking/server"
)

func main() {
	parser := argparse.NewParser("imtrack", "Sticker anchor tracking service")
	dbFile := parser.String("c", "db", &argparse.Options{Help: "Sticker database file", Default: "imtrack.sqlite"})
	port := parser.Int("p", "port", &argparse.Options{Help: "HTTP listen port", Default: 8080})
	fps := parser.Int("", "fps", &argparse.Options{Help: "Frame rate of the internal frame driver", Default: 30})
	width := parser.Int("", "width", &argparse.Options{Help: "Overlay render width", Default: 480})
	height := parser.Int("", "height", &argparse.Options{Help: "Overlay render height", Default: 640})
	assetDir := parser.String("", "assets", &argparse.Options{Help: "Directory with sticker textures (sprite.png etc)", Default: ""})
	sessionLog := parser.String("", "session-log", &argparse.Options{Help: "Record every frame input to this file, for later replay", Default: ""})
	fov := parser.Float("", "fov", &argparse.Options{Help: "Vertical field of view in degrees (overrides the stored setting)", Default: 0.0})
	aspect := parser.Float("", "aspect", &argparse.Options{Help: "Frame aspect ratio, width/height (overrides the stored setting)", Default: 0.0})
	boxEdge := parser.Float("", "boxedge", &argparse.Options{Help: "Tracked box edge size, normalized (overrides the stored setting)", Default: 0.0})
	demo := parser.Flag("", "demo", &argparse.Options{Help: "Seed a demo scene and sway the camera", Default: false})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg := server.DefaultConfig()
	cfg.DBFilename = *dbFile
	cfg.FPS = *fps
	cfg.OverlayWidth = *width
	cfg.OverlayHeight = *height
	cfg.AssetDir = *assetDir
	cfg.SessionLogFilename = *sessionLog
	cfg.FOVDegrees = float32(*fov)
	cfg.Aspect = float32(*aspect)
	cfg.BoxEdge = float32(*boxEdge)
	cfg.Demo = *demo

	srv, err := server.NewServer(logger, cfg)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	srv.StartDriver()
	srv.ListenForKillSignals()

	// Tell systemd that we're alive
	daemon.SdNotify(false, daemon.SdNotifyReady)

	// SYNC-SERVER-PORT
	err = srv.ListenHTTP(fmt.Sprintf(":%v", *port))
	if err != nil && err != http.ErrServerClosed {
		logger.Errorf("ListenHTTP returned: %v", err)
		os.Exit(1)
	}

	<-srv.ShutdownComplete
}
