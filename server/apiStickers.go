package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/bmharper/flatbush-go"
	"github.com/cyclopcam/www"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
	"github.com/julienschmidt/httprouter"
)

// stickerFromIDOrPanic finds a live sticker by id.
// Caller must hold sceneLock.
func (s *Server) stickerFromIDOrPanic(idStr string) *sticker.Sticker {
	id := int32(www.ParseID(idStr))
	for i := range s.stickers {
		if s.stickers[i].ID == id {
			return &s.stickers[i]
		}
	}
	www.PanicBadRequestf("Invalid sticker ID '%v'", idStr)
	return nil
}

func (s *Server) httpStickersList(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	s.sceneLock.Lock()
	list := make([]sticker.Sticker, len(s.stickers))
	copy(list, s.stickers)
	s.sceneLock.Unlock()
	www.SendJSON(w, list)
}

func (s *Server) httpStickerAdd(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	type addJSON struct {
		X      float32         `json:"x"`
		Y      float32         `json:"y"`
		Render *sticker.Render `json:"render"`
	}
	body := addJSON{}
	www.ReadJSON(w, r, &body, 1024*1024)
	if body.X < 0 || body.X > 1 || body.Y < 0 || body.Y > 1 {
		www.PanicBadRequestf("Sticker position (%v, %v) is outside [0,1]", body.X, body.Y)
	}
	if body.Render != nil && (*body.Render < sticker.RenderSprite || *body.Render > sticker.RenderDino) {
		www.PanicBadRequestf("Invalid render asset %v", *body.Render)
	}

	s.sceneLock.Lock()
	st := sticker.NewSticker(s.idAlloc.Next(), body.X, body.Y)
	if body.Render != nil {
		st.Render = *body.Render
	}
	s.stickers = append(s.stickers, st)
	s.sceneLock.Unlock()

	www.SendJSON(w, st)
}

// httpStickerUpdate patches a sticker. Only fields present in the body change.
// Moving a sticker restarts its tracking automatically, so there is no need
// to call reset after changing x/y.
func (s *Server) httpStickerUpdate(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	type updateJSON struct {
		X        *float32        `json:"x"`
		Y        *float32        `json:"y"`
		Rotation *float32        `json:"rotation"`
		Scale    *float32        `json:"scale"`
		Render   *sticker.Render `json:"render"`
	}
	body := updateJSON{}
	www.ReadJSON(w, r, &body, 1024*1024)
	if body.X != nil && (*body.X < 0 || *body.X > 1) {
		www.PanicBadRequestf("Sticker x %v is outside [0,1]", *body.X)
	}
	if body.Y != nil && (*body.Y < 0 || *body.Y > 1) {
		www.PanicBadRequestf("Sticker y %v is outside [0,1]", *body.Y)
	}
	if body.Scale != nil && *body.Scale <= 0 {
		www.PanicBadRequestf("Sticker scale %v must be positive", *body.Scale)
	}
	if body.Render != nil && (*body.Render < sticker.RenderSprite || *body.Render > sticker.RenderDino) {
		www.PanicBadRequestf("Invalid render asset %v", *body.Render)
	}

	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	st := s.stickerFromIDOrPanic(params.ByName("id"))
	if body.X != nil {
		st.X = *body.X
	}
	if body.Y != nil {
		st.Y = *body.Y
	}
	if body.Rotation != nil {
		st.Rotation = *body.Rotation
	}
	if body.Scale != nil {
		st.Scale = *body.Scale
	}
	if body.Render != nil {
		st.Render = *body.Render
	}
	www.SendJSON(w, *st)
}

// httpStickerReset re-anchors a sticker at its current position on the next
// frame. Only one sticker can re-anchor per frame; the last request wins.
func (s *Server) httpStickerReset(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	st := s.stickerFromIDOrPanic(params.ByName("id"))
	s.resetID = st.ID
	www.SendOK(w)
}

// httpStickerCycle switches a sticker to the next render asset.
func (s *Server) httpStickerCycle(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	st := s.stickerFromIDOrPanic(params.ByName("id"))
	st.Render = st.Render.Next()
	www.SendJSON(w, *st)
}

func (s *Server) httpStickerDelete(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	id := int32(www.ParseID(params.ByName("id")))
	s.sceneLock.Lock()
	defer s.sceneLock.Unlock()
	for i := range s.stickers {
		if s.stickers[i].ID == id {
			// Preserve order. It determines draw order.
			s.stickers = append(s.stickers[:i], s.stickers[i+1:]...)
			www.SendOK(w)
			return
		}
	}
	www.PanicBadRequestf("Invalid sticker ID '%v'", params.ByName("id"))
}

// httpPick hit-tests a normalized screen point against the last frame's
// rendered quads. Responds with the picked sticker id, or -1 for a miss.
// Example: curl "localhost:8080/api/pick?x=0.25&y=0.25"
func (s *Server) httpPick(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	x64, err := strconv.ParseFloat(www.RequiredQueryValue(r, "x"), 32)
	www.CheckClient(err)
	y64, err := strconv.ParseFloat(www.RequiredQueryValue(r, "y"), 32)
	www.CheckClient(err)
	x, y := float32(x64), float32(y64)

	state := s.Pipeline.LastState()
	if state == nil {
		www.PanicBadRequestf("No frames processed yet")
	}
	byID := map[int32]sticker.Sticker{}
	for _, st := range state.Stickers {
		byID[st.ID] = st
	}

	comp := s.Pipeline.Composer()
	fb := flatbush.NewFlatbush[float32]()
	fb.Reserve(len(state.Anchors))
	boxes := make([]track.Box, 0, len(state.Anchors))
	ids := make([]int32, 0, len(state.Anchors))
	for _, a := range state.Anchors {
		st, ok := byID[a.StickerID]
		if !ok {
			continue
		}
		box := comp.ScreenBox(a, st)
		fb.Add(box.Left, box.Top, box.Right, box.Bottom)
		boxes = append(boxes, box)
		ids = append(ids, a.StickerID)
	}
	fb.Finish()

	// Overlapping quads: pick the one whose center is closest to the tap
	best := int32(-1)
	bestD := float32(math.MaxFloat32)
	for _, i := range fb.Search(x, y, x, y) {
		cx := (boxes[i].Left + boxes[i].Right) / 2
		cy := (boxes[i].Top + boxes[i].Bottom) / 2
		d := (cx-x)*(cx-x) + (cy-y)*(cy-y)
		if d < bestD {
			bestD = d
			best = ids[i]
		}
	}

	type pickJSON struct {
		StickerID int32 `json:"stickerID"`
	}
	www.SendJSON(w, &pickJSON{StickerID: best})
}
