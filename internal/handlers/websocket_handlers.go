package handlers

import (
	"log/slog"
	"net/http"

	"gator-gram/internal/middleware"
	ws "gator-gram/internal/websocket"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is handled by the CORS layer; the upgrade itself
	// accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the connection and subscribes the client to
// the live feed event stream. Browsers can't set an Authorization header
// on a websocket handshake, so the token travels as a query parameter.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &ws.Client{
			Hub:    s.Hub,
			UserID: claims.UserID,
			Conn:   conn,
			Send:   make(chan []byte, 256),
		}
		s.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
