// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nyonnyola/nyonnyola/internal/game"
	"github.com/nyonnyola/nyonnyola/internal/models"
	"github.com/nyonnyola/nyonnyola/internal/words"
)

// CreateSessionRequest is the POST /session/create body: the roster, the
// session options, and an optional word pool. When Words is empty the
// built-in pool is used.
type CreateSessionRequest struct {
	Players []models.RosterEntry `json:"players"`
	Options models.Options       `json:"options"`
	Words   []string             `json:"words,omitempty"`
}

// CreateSessionHandler builds an in-memory session and responds with its
// initial render snapshot (which carries the session id).
func CreateSessionHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		if len(req.Players) < 2 {
			http.Error(w, "At least 2 players are required", http.StatusBadRequest)
			return
		}
		seen := make(map[int64]bool, len(req.Players))
		for i := range req.Players {
			req.Players[i].Name = strings.TrimSpace(req.Players[i].Name)
			if req.Players[i].Name == "" {
				http.Error(w, "Player names must be non-empty", http.StatusBadRequest)
				return
			}
			if seen[req.Players[i].ID] {
				http.Error(w, "Player ids must be unique", http.StatusBadRequest)
				return
			}
			seen[req.Players[i].ID] = true
		}

		pool := req.Words
		if len(pool) == 0 {
			pool = words.Default()
		}

		g := s.NewSession(req.Players, req.Options, pool)
		writeJSON(w, http.StatusOK, g.LiveState())
	}
}

// sessionInfo is the /session/list row shape.
type sessionInfo struct {
	ID        uuid.UUID      `json:"id"`
	TurnState game.TurnState `json:"turnState"`
	Round     int            `json:"round"`
	Players   int            `json:"players"`
	Ended     bool           `json:"ended"`
}

// ListSessionsHandler lists live sessions.
func ListSessionsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos := []sessionInfo{}
		for _, g := range s.Store.List() {
			st := g.LiveState()
			infos = append(infos, sessionInfo{
				ID:        st.SessionID,
				TurnState: st.TurnState,
				Round:     st.Round,
				Players:   len(st.Players),
				Ended:     st.Ended,
			})
		}
		writeJSON(w, http.StatusOK, infos)
	}
}

// SessionStateHandler returns the current render snapshot for one session
// (the pull half of the live-state contract; the push half is the WebSocket).
func SessionStateHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := lookupSession(s, w, r.URL.Query().Get("id"))
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, g.LiveState())
	}
}

// ActionMessage is a player action, arriving over the WebSocket or as a
// POST /session/action body. Unknown types and malformed payloads are
// ignored, matching the engine's no-op policy.
type ActionMessage struct {
	ID    string `json:"id,omitempty"` // session id; unused on the ws (bound by path)
	Type  string `json:"type"`
	Index *int   `json:"index,omitempty"`
	Force string `json:"force,omitempty"`
}

// ActionHandler applies a single player action over plain HTTP and responds
// with the resulting snapshot.
func ActionHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var msg ActionMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		g, ok := lookupSession(s, w, msg.ID)
		if !ok {
			return
		}
		applyAction(g, msg)
		writeJSON(w, http.StatusOK, g.LiveState())
	}
}

// EndSessionHandler ends the session and responds with the final result
// payload, then drops the session from the store.
func EndSessionHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		g, ok := lookupSession(s, w, r.URL.Query().Get("id"))
		if !ok {
			return
		}
		res := g.EndSession()
		s.Store.Delete(g.ID)
		writeJSON(w, http.StatusOK, res)
	}
}

// applyAction routes one action message to the engine. The engine's own state
// gating makes every mistimed action a harmless no-op.
func applyAction(g *game.Game, msg ActionMessage) {
	switch msg.Type {
	case "start":
		g.StartTurn()
	case "toggle":
		if msg.Index == nil {
			return
		}
		g.ToggleWord(*msg.Index, forcedState(msg.Force))
	case "done":
		g.Done()
	case "advance":
		g.Advance()
	case "end":
		g.EndSession()
	}
}

// forcedState maps the optional wire force field to a word state; anything
// unrecognized falls back to the default two-state flip.
func forcedState(s string) game.WordState {
	switch s {
	case "correct":
		return game.WordCorrect
	case "skipped":
		return game.WordSkipped
	}
	return ""
}

func lookupSession(s *Server, w http.ResponseWriter, idStr string) (*game.Game, bool) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return nil, false
	}
	g, ok := s.Store.Get(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return g, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
