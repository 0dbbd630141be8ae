package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/cyclopcam/www"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) httpPing(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	type pingJSON struct {
		Time int64 `json:"time"`
	}
	ping := &pingJSON{
		Time: time.Now().Unix(),
	}
	www.SendJSON(w, ping)
}

// httpState returns the most recent frame state: stickers, anchors, tracker
// commands, and composed poses.
func (s *Server) httpState(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	state := s.Pipeline.LastState()
	if state == nil {
		www.PanicBadRequestf("No frames processed yet")
	}
	www.CacheNever(w)
	www.SendJSON(w, state)
}

func (s *Server) httpStats(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	www.SendJSON(w, s.Pipeline.Stats())
}

// Fetch a JPG of the latest composited overlay frame.
// Example: curl -o overlay.jpg localhost:8080/api/overlay.jpg
func (s *Server) httpOverlayImage(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	www.CacheNever(w)

	contentType := "image/jpeg"
	state := s.Pipeline.LastState()
	if state == nil || state.Frame == nil || len(state.Frame.JPEG) == 0 {
		www.PanicBadRequestf("No image available yet")
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(state.Frame.JPEG)
}

// httpHistory returns the recorded anchor positions of one sticker, oldest
// first.
func (s *Server) httpHistory(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	id := int32(www.ParseID(params.ByName("id")))
	history := s.Pipeline.History(id)
	if history == nil {
		history = []track.Anchor{}
	}
	www.SendJSON(w, history)
}

// httpSetOrientation feeds a device orientation reading into the pipeline.
// The body carries either a row-major 3x3 rotation matrix, or Euler angles
// in radians.
func (s *Server) httpSetOrientation(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	type orientationJSON struct {
		Matrix *[9]float32 `json:"matrix"`
		Yaw    float32     `json:"yaw"`
		Pitch  float32     `json:"pitch"`
		Roll   float32     `json:"roll"`
	}
	body := orientationJSON{}
	www.ReadJSON(w, r, &body, 1024*1024)
	if body.Matrix != nil {
		s.SetOrientation(pose.OrientationFromMatrix(*body.Matrix))
	} else {
		s.SetOrientation(pose.OrientationFromEuler(body.Yaw, body.Pitch, body.Roll))
	}
	www.SendOK(w)
}

// httpDebugChart renders a quick HTML plot of recent per-frame figures using
// go-echarts. This is a debugging-only endpoint, for eyeballing tracker load
// and frame times without a client UI.
func (s *Server) httpDebugChart(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	samples := s.Pipeline.RecentSamples()

	commands := charts.NewScatter()
	commands.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pipeline debug", Theme: "dark", Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Tracker commands per frame"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "pts (ms)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "commands"}),
	)
	commandData := make([]opts.ScatterData, 0, len(samples))
	for _, sample := range samples {
		commandData = append(commandData, opts.ScatterData{Value: []interface{}{sample.PTS, sample.Commands}})
	}
	commands.AddSeries("commands", commandData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	frameTime := charts.NewScatter()
	frameTime.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Frame processing time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "pts (ms)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	timeData := make([]opts.ScatterData, 0, len(samples))
	for _, sample := range samples {
		timeData = append(timeData, opts.ScatterData{Value: []interface{}{sample.PTS, sample.ProcessMS}})
	}
	frameTime.AddSeries("ms", timeData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	page := components.NewPage()
	page.AddCharts(commands, frameTime)

	var buf bytes.Buffer
	www.Check(page.Render(&buf))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
