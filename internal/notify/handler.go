package notify

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
)

// wsConn adapts a websocket connection to the hub's Conn interface.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Write(ctx context.Context, payload []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "replaced by newer connection")
}

// ServeWS upgrades GET /ws/{sessionID} and keeps the connection registered
// until the client goes away. Only the server-to-client direction carries
// data; inbound frames are drained to notice the close.
func ServeWS(hub *Hub, allowedOrigins []string) http.HandlerFunc {
	// Origin patterns match hosts, not full origins.
	patterns := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimPrefix(origin, "http://")
		origin = strings.TrimPrefix(origin, "https://")
		patterns = append(patterns, origin)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		if sessionID == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: patterns,
		})
		if err != nil {
			slog.Warn("websocket accept failed", "error", err, "session_id", sessionID)
			return
		}

		conn := &wsConn{conn: c}
		hub.Register(sessionID, conn)
		defer hub.Unregister(sessionID, conn)

		slog.Debug("websocket connected", "session_id", sessionID)

		ctx := r.Context()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				slog.Debug("websocket closed", "session_id", sessionID, "reason", err)
				_ = c.Close(websocket.StatusNormalClosure, "")
				return
			}
		}
	}
}
