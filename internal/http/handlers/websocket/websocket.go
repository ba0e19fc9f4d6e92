package websocket

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/jwt"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/response"
	wsClient "github.com/GnandeepVenigalla/gd25th-backend/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gallery is served from a separate origin
		return true
	},
}

// Handler upgrades authenticated gallery viewers to a WebSocket connection
// that receives media.committed events.
func Handler(hub *wsClient.Hub, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Browsers cannot set headers on WebSocket requests, so the token
		// travels as a query parameter
		token := r.URL.Query().Get("token")
		if token == "" {
			slog.Warn("WebSocket connection attempted without token")
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("token required")))
			return
		}

		if _, err := jwt.ExtractSubjectFromToken(token, jwtSecret); err != nil {
			slog.Warn("WebSocket connection attempted with invalid token", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid token")))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		client := wsClient.NewClient(conn, r.RemoteAddr, hub)
		hub.RegisterClient(client)
		client.Start()
	}
}
