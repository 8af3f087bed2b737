package config

import (
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
}

// NewWebSocket allows the origins listed in WS_ALLOWED_ORIGINS, comma
// separated. Without the variable any origin may connect.
func NewWebSocket() (*WebSocket, error) {
	var allowed []string
	if v := os.Getenv("WS_ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			allowed = append(allowed, strings.TrimSpace(origin))
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, a := range allowed {
				if a == origin {
					return true
				}
			}
			return false
		},
	}

	return &WebSocket{Upgrader: upgrader}, nil
}
