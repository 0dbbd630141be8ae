package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// httpStateStream streams frame states over a websocket, one JSON message
// per processed frame. Slow clients miss frames rather than stalling the
// pipeline.
func (s *Server) httpStateStream(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Errorf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	watcher := s.Pipeline.AddWatcher()
	defer s.Pipeline.RemoveWatcher(watcher)

	// Read from the websocket so that we notice the client going away.
	// We discard anything it sends.
	closed := make(chan bool)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(closed)
				return
			}
		}
	}()

	for {
		select {
		case state := <-watcher:
			buf, err := json.Marshal(state)
			if err != nil {
				s.Log.Errorf("Failed to marshal frame state: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
