package server

import (
	"net/http"
	"time"

	"github.com/cyclopcam/www"
	"github.com/go-chi/httprate"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) setupHttpRoutes() {
	logEveryRequest := false
	router := httprouter.New()

	plain := func(method, route string, handle httprouter.Handle) {
		www.Handle(s.Log, router, method, route, func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
			if logEveryRequest {
				s.Log.Infof("HTTP %v %v", method, r.URL.Path)
			}
			handle(w, r, params)
		})
	}

	// ratelimited creates a unique rate limiter per endpoint, so we don't need
	// httprate.KeyByEndpoint.
	ratelimited := func(method, route string, handle httprouter.Handle, requestLimit int, windowLength time.Duration) {
		limited := httprate.Limit(requestLimit, windowLength, httprate.WithKeyFuncs(httprate.KeyByIP))

		www.Handle(s.Log, router, method, route, func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
			limited(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handle(w, r, params)
			})).ServeHTTP(w, r)
		})
	}

	plain("GET", "/api/ping", s.httpPing)
	plain("GET", "/api/state", s.httpState)
	plain("GET", "/api/stats", s.httpStats)
	plain("GET", "/api/config", s.httpConfig)
	plain("GET", "/api/overlay.jpg", s.httpOverlayImage)
	plain("GET", "/api/ws", s.httpStateStream)
	plain("GET", "/api/pick", s.httpPick)
	plain("GET", "/api/history/:id", s.httpHistory)
	plain("GET", "/api/debug/chart", s.httpDebugChart)

	plain("GET", "/api/stickers", s.httpStickersList)
	ratelimited("POST", "/api/stickers", s.httpStickerAdd, 30, time.Second)
	plain("POST", "/api/stickers/:id", s.httpStickerUpdate)
	ratelimited("POST", "/api/stickers/:id/reset", s.httpStickerReset, 10, time.Second)
	plain("POST", "/api/stickers/:id/cycle", s.httpStickerCycle)
	plain("DELETE", "/api/stickers/:id", s.httpStickerDelete)

	plain("GET", "/api/scenes", s.httpScenesList)
	ratelimited("POST", "/api/scenes/:name", s.httpSceneSave, 5, time.Second)
	plain("POST", "/api/scenes/:name/load", s.httpSceneLoad)
	plain("DELETE", "/api/scenes/:id", s.httpSceneDelete)
	plain("GET", "/api/shared/:token", s.httpSceneShared)

	plain("GET", "/api/variables", s.httpVariablesList)
	plain("GET", "/api/variables/:key", s.httpVariableGet)
	plain("POST", "/api/variables/:key", s.httpVariableSet)

	ratelimited("POST", "/api/orientation", s.httpSetOrientation, 60, time.Second)

	s.httpRouter = router
}
