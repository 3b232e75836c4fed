package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/visage-chat/visage/internal/metrics"
)

// ErrNoConnection indicates no live connection exists for the session.
// Pushes are best-effort: callers drop the payload, the client re-polls.
var ErrNoConnection = errors.New("no connection for session")

// AvatarUpdate is pushed when a deferred avatar becomes available.
type AvatarUpdate struct {
	Event     string `json:"event"`
	AvatarURL string `json:"avatar_url"`
}

// NewAvatarUpdate builds the push payload for a finished avatar.
func NewAvatarUpdate(avatarURL string) AvatarUpdate {
	return AvatarUpdate{Event: "avatar_update", AvatarURL: avatarURL}
}

// Conn is one live client connection.
type Conn interface {
	Write(ctx context.Context, payload []byte) error
	Close() error
}

// Notifier delivers payloads to the connection registered for a session.
type Notifier interface {
	Push(ctx context.Context, sessionID string, payload any) error
}

// Hub tracks at most one live connection per session for the lifetime of
// the process. There is no queueing and no persistence of missed pushes.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Register associates a connection with a session. A reconnect replaces the
// previous association; the old connection is closed.
func (h *Hub) Register(sessionID string, conn Conn) {
	h.mu.Lock()
	old := h.conns[sessionID]
	h.conns[sessionID] = conn
	h.mu.Unlock()

	if old != nil {
		_ = old.Close()
	} else {
		metrics.WebsocketConnections.Inc()
	}
}

// Unregister removes the association, but only if conn is still the current
// one — a replaced connection must not evict its replacement.
func (h *Hub) Unregister(sessionID string, conn Conn) {
	h.mu.Lock()
	current, ok := h.conns[sessionID]
	if ok && current == conn {
		delete(h.conns, sessionID)
		metrics.WebsocketConnections.Dec()
	}
	h.mu.Unlock()
}

// Push delivers a JSON payload to the session's connection, if any.
func (h *Hub) Push(ctx context.Context, sessionID string, payload any) error {
	h.mu.RLock()
	conn, ok := h.conns[sessionID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("pushing to session %s: %w", sessionID, ErrNoConnection)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling push payload: %w", err)
	}
	if err := conn.Write(ctx, data); err != nil {
		return fmt.Errorf("writing to session %s: %w", sessionID, err)
	}
	return nil
}
