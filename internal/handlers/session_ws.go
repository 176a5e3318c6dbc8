// internal/handlers/session_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nyonnyola/nyonnyola/internal/game"
	"github.com/nyonnyola/nyonnyola/internal/middleware"
)

// wsConn is one client's presence on a session hub. Events are pushed through
// a buffered channel so a slow reader never blocks the engine.
type wsConn struct {
	c      *websocket.Conn
	out    chan []byte
	cancel context.CancelFunc
}

// write pushes bytes onto the connection's out channel non-blockingly,
// dropping the message if the channel is full or closed.
func (wc *wsConn) write(data []byte) {
	select {
	case wc.out <- data:
	default:
		log.Printf("wsConn write WARNING: out channel full or closed, dropped %d byte(s).", len(data))
	}
}

// sessionHub fans engine events for one session out to every connected
// client.
type sessionHub struct {
	mu    sync.Mutex
	conns map[*wsConn]struct{}
}

func newSessionHub() *sessionHub {
	return &sessionHub{conns: make(map[*wsConn]struct{})}
}

func (h *sessionHub) add(wc *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[wc] = struct{}{}
}

func (h *sessionHub) remove(wc *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, wc)
}

// broadcast marshals the event once and writes it to every client. It is the
// Game.BroadcastFn and therefore runs with the game lock held; only the
// non-blocking channel sends happen here.
func (h *sessionHub) broadcast(ev game.GameEvent) {
	data := convertEventToBytes(ev)
	h.mu.Lock()
	defer h.mu.Unlock()
	for wc := range h.conns {
		wc.write(data)
	}
}

func (h *sessionHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for wc := range h.conns {
		wc.cancel()
		delete(h.conns, wc)
	}
}

// convertEventToBytes marshals a GameEvent into JSON bytes.
// Logs a warning and returns empty JSON "{}" on marshalling error.
func convertEventToBytes(ev game.GameEvent) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("WARNING: Failed to marshal GameEvent type %s: %v", ev.Type, err)
		return []byte("{}")
	}
	return data
}

// SessionWSHandler upgrades the HTTP connection to WebSocket for a session at
// /session/ws/{session_id}. The client receives a state_sync event on join
// and every engine event afterwards, and sends ActionMessage frames to play.
func SessionWSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/session/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing session_id in path (/session/ws/{session_id})", http.StatusBadRequest)
			return
		}
		sessionID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "Invalid session_id format", http.StatusBadRequest)
			return
		}

		g, ok := s.Store.Get(sessionID)
		if !ok {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		hub := s.hub(sessionID)
		if hub == nil {
			http.Error(w, "Session has already ended", http.StatusGone)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"nyonnyola"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for session %s: %v", sessionID, err)
			return
		}
		if c.Subprotocol() != "nyonnyola" {
			c.Close(BadSubprotocolError, "Client must use the 'nyonnyola' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		wc := &wsConn{
			c:      c,
			out:    make(chan []byte, 32),
			cancel: cancel,
		}
		hub.add(wc)
		defer func() {
			hub.remove(wc)
			cancel()
			c.Close(websocket.StatusNormalClosure, "bye")
		}()

		// Writer pump.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case data := <-wc.out:
					if err := c.Write(ctx, websocket.MessageText, data); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Initial snapshot so a late joiner can render immediately.
		wc.write(convertEventToBytes(game.GameEvent{
			Type:  game.EventStateSync,
			State: stateForEvent(g),
		}))

		// Read loop.
		var readErr error
		for {
			_, data, err := c.Read(ctx)
			if err != nil {
				readErr = err
				break
			}
			var msg ActionMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.Debugf("Ignoring malformed ws frame for session %s: %v", sessionID, err)
				continue
			}
			applyAction(g, msg)
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

func stateForEvent(g *game.Game) *game.LiveState {
	st := g.LiveState()
	return &st
}
