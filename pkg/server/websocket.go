package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

const wsWriteTimeout = 5 * time.Second

// serveWebSocket pushes a state view every time the session state changes.
// Client messages are ignored.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())
	ctrl := controllerFrom(r.Context())
	id := sessionIDFrom(r.Context())

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	release := s.manager.Attach(id)
	defer release()

	ctx := conn.CloseRead(r.Context())
	states, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return

		case st, ok := <-states:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "session expired")
				return
			}
			s.manager.Touch(id)

			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, conn, NewStateView(st))
			cancel()
			if err != nil {
				logger.Debug("WebSocket write failed", "error", err)
				return
			}
		}
	}
}
