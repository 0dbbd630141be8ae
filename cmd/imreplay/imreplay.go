package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/googleinterns/instant-motion-tracking/pkg/boxtrack"
	"github.com/googleinterns/instant-motion-tracking/pkg/pipeline"
	"github.com/googleinterns/instant-motion-tracking/pkg/render"
	"github.com/googleinterns/instant-motion-tracking/pkg/replay"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

// Replays a recorded session through a fresh pipeline, and summarizes the
// tracker's behavior. The simulated tracker is deterministic, so replaying
// the same log twice produces identical anchors.
func main() {
	parser := argparse.NewParser("imreplay", "Replay a recorded tracking session")
	input := parser.String("i", "input", &argparse.Options{Help: "Session log file", Required: true})
	reportFile := parser.String("o", "report", &argparse.Options{Help: "Write an HTML report to this file", Default: ""})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	check(err)

	header, records, err := replay.ReadFile(*input)
	check(err)

	cfg := pipeline.DefaultConfig()
	cfg.Intrinsics = header.Intrinsics
	if header.BoxEdge > 0 {
		cfg.BoxEdge = header.BoxEdge
	}
	if header.RefDepth != 0 {
		cfg.RefDepth = header.RefDepth
	}

	tracker := boxtrack.NewSim(logger, boxtrack.DefaultSimParams())
	pipe, err := pipeline.NewPipeline(logger, cfg, tracker, render.NewRecorder())
	check(err)

	collector := replay.NewCollector()
	for _, rec := range records {
		state, err := pipe.Step(pipeline.FrameInput{
			PTS:         rec.PTS,
			Message:     rec.Message,
			Orientation: rec.DeviceOrientation(),
		})
		check(err)
		collector.Add(len(state.Commands), state.Anchors)
	}

	sum := collector.Summary()
	fmt.Printf("Frames:          %v\n", sum.Frames)
	fmt.Printf("Mean commands:   %.2f\n", sum.MeanCommands)
	fmt.Printf("Median commands: %.0f\n", sum.MedianCommands)
	fmt.Printf("P95 commands:    %.0f\n", sum.P95Commands)
	fmt.Printf("Mean anchors:    %.2f\n", sum.MeanAnchors)
	for _, d := range sum.Drift {
		fmt.Printf("Sticker %v scale: %.3f -> %.3f\n", d.StickerID, d.First, d.Last)
	}

	if *reportFile != "" {
		f, err := os.Create(*reportFile)
		check(err)
		check(replay.RenderReport(f, filepath.Base(*input), collector))
		check(f.Close())
		fmt.Printf("Report written to %v\n", *reportFile)
	}
}
