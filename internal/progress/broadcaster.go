// Package progress exposes a running BatchEngine's progress over a
// websocket so an out-of-process dashboard can subscribe to batch-progress
// updates without polling.
package progress

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Update is one progress event broadcast to every connected subscriber. It
// mirrors the (completed, total) pair the BatchEngine's ProgressCallback
// already reports, plus the user/folder the run belongs to so one
// Broadcaster can be shared across concurrent runs.
type Update struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Broadcaster fans one BatchEngine run's progress callbacks out to every
// currently-connected websocket subscriber. Connections that fail a write
// are dropped rather than blocking the broadcast.
type Broadcaster struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// New returns a ready-to-use Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{conns: make(map[*websocket.Conn]struct{})}
}

// Handler returns an http.Handler that accepts websocket connections on
// whatever path the caller mounts it at and registers each as a subscriber
// until the client disconnects.
func (b *Broadcaster) Handler() http.Handler {
	return http.HandlerFunc(b.handleWebSocket)
}

func (b *Broadcaster) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		slog.Error("progress: websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
	}()

	// The connection is read-only from the client's perspective; block on
	// reads purely to detect disconnection.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

// Callback returns a batch.Options.ProgressCallback-compatible function
// that broadcasts each (completed, total) pair tagged with userID.
func (b *Broadcaster) Callback(userID string) func(completed, total int) {
	return func(completed, total int) {
		b.broadcast(Update{Type: "progress", UserID: userID, Completed: completed, Total: total})
	}
}

func (b *Broadcaster) broadcast(upd Update) {
	b.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, c := range conns {
		if err := wsjson.Write(ctx, c, upd); err != nil {
			slog.Debug("progress: dropping subscriber after write failure", "error", err)
			b.mu.Lock()
			delete(b.conns, c)
			b.mu.Unlock()
		}
	}
}
