package server

import (
	"net/http"

	"github.com/cyclopcam/www"
	"github.com/googleinterns/instant-motion-tracking/pkg/pipeline"
	"github.com/googleinterns/instant-motion-tracking/server/stickerdb"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) httpConfig(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	type configJSON struct {
		Pipeline  pipeline.Config `json:"pipeline"`
		SceneName string          `json:"sceneName"`
		FPS       int             `json:"fps"`
		Demo      bool            `json:"demo"`
	}
	s.sceneLock.Lock()
	sceneName := s.sceneName
	s.sceneLock.Unlock()
	www.SendJSON(w, &configJSON{
		Pipeline:  s.Pipeline.Config(),
		SceneName: sceneName,
		FPS:       s.fps,
		Demo:      s.demo,
	})
}

func (s *Server) httpVariablesList(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	values := []stickerdb.Variable{}
	www.Check(s.DB.DB.Find(&values).Error)
	www.SendJSON(w, values)
}

func (s *Server) httpVariableGet(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	key := stickerdb.VariableKey(params.ByName("key"))
	if !stickerdb.IsValidVariable(key) {
		www.PanicBadRequestf("Unknown variable '%v'", key)
	}
	value, err := s.DB.GetVariable(key)
	www.Check(err)
	www.SendText(w, value)
}

func (s *Server) httpVariableSet(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	keyStr := params.ByName("key")
	value := ""
	if r.URL.Query().Has("value") {
		value = r.URL.Query().Get("value")
	} else {
		value = www.ReadString(w, r, 1024*1024)
	}

	key := stickerdb.VariableKey(keyStr)

	www.CheckClient(stickerdb.ValidateVariable(key, value))
	www.Check(s.DB.SetVariable(key, value))

	s.Log.Infof("Set variable %v: %v", key, value)

	// If you receive wantRestart:true, then you should restart the service
	// when you're ready. You may want to batch a few setVariable calls
	// before restarting.
	// SYNC-SET-VARIABLE-RESPONSE
	type Response struct {
		WantRestart bool `json:"wantRestart"`
	}

	www.SendJSON(w, &Response{
		WantRestart: stickerdb.VariableSetNeedsRestart(key),
	})
}
