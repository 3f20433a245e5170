package web

import (
	"net/http"

	"github.com/caretower/component-tracker/internal/broadcast"
	"github.com/caretower/component-tracker/internal/logging"
)

// handleWebSocket upgrades the connection and subscribes it to change
// events. The client receives every create, update, delete, and
// bulk_complete event until it disconnects or falls too far behind.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.FromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}

	logging.FromContext(r.Context()).Debug("websocket client connected",
		"remote", conn.RemoteAddr().String(),
	)

	client := broadcast.NewClient(s.hub, conn)
	client.Serve()
}
