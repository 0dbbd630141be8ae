package server

import (
	"net/http"

	"github.com/cyclopcam/www"
	"github.com/googleinterns/instant-motion-tracking/pkg/sticker"
	"github.com/googleinterns/instant-motion-tracking/server/stickerdb"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) httpScenesList(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	scenes, err := s.DB.ListScenes()
	www.Check(err)
	www.SendJSON(w, scenes)
}

// httpSceneSave snapshots the live scene under the given name, and makes it
// the active scene, so it gets restored on the next startup.
func (s *Server) httpSceneSave(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	name := params.ByName("name")

	s.sceneLock.Lock()
	stickers := make([]sticker.Sticker, len(s.stickers))
	copy(stickers, s.stickers)
	lastID := s.idAlloc.Last()
	s.sceneLock.Unlock()

	scene, err := s.DB.SaveScene(name, stickers, lastID)
	www.CheckClient(err)
	www.Check(s.DB.SetVariable(stickerdb.VarActiveScene, name))

	s.sceneLock.Lock()
	s.sceneName = name
	s.sceneLock.Unlock()

	s.Log.Infof("Saved scene '%v' with %v stickers", name, len(stickers))
	www.SendJSON(w, scene)
}

// httpSceneLoad replaces the live scene with a saved one.
func (s *Server) httpSceneLoad(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	name := params.ByName("name")
	scene, err := s.DB.GetSceneByName(name)
	www.Check(err)
	if scene == nil {
		www.PanicBadRequestf("Invalid scene '%v'", name)
	}
	s.applyScene(scene)
	www.Check(s.DB.SetVariable(stickerdb.VarActiveScene, scene.Name))
	s.Log.Infof("Loaded scene '%v' with %v stickers", scene.Name, len(scene.StickerList()))
	www.SendJSON(w, scene)
}

func (s *Server) httpSceneDelete(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	id := www.ParseID(params.ByName("id"))
	scene, err := s.DB.GetScene(id)
	www.Check(err)
	if scene == nil {
		www.PanicBadRequestf("Invalid scene ID '%v'", params.ByName("id"))
	}
	www.Check(s.DB.DeleteScene(id))
	www.SendOK(w)
}

// httpSceneShared resolves a read-only share link.
// Share tokens are random, so knowing one proves you were given the link.
func (s *Server) httpSceneShared(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	scene, err := s.DB.GetSceneByToken(params.ByName("token"))
	www.Check(err)
	if scene == nil {
		www.PanicBadRequestf("Invalid share token")
	}
	www.SendJSON(w, scene)
}
