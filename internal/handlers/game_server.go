// internal/handlers/game_server.go
package handlers

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/google/uuid"
	"github.com/nyonnyola/nyonnyola/internal/cache"
	"github.com/nyonnyola/nyonnyola/internal/database"
	"github.com/nyonnyola/nyonnyola/internal/game"
	"github.com/nyonnyola/nyonnyola/internal/models"
)

// Server is a high-level struct holding the session store and the
// per-session broadcast hubs that fan engine events out to WebSocket clients.
type Server struct {
	Mutex sync.Mutex
	Store *game.Store
	hubs  map[uuid.UUID]*sessionHub
}

func NewServer() *Server {
	return &Server{
		Store: game.NewStore(),
		hubs:  make(map[uuid.UUID]*sessionHub),
	}
}

// NewSession builds a Game from the request inputs and wires its hooks: the
// broadcast hub, the Redis round queue, and final-result persistence. The
// engine itself never depends on any of the three.
func (s *Server) NewSession(roster []models.RosterEntry, opts models.Options, pool []string) *game.Game {
	g := game.NewGame(roster, opts, pool)

	hub := newSessionHub()
	s.Mutex.Lock()
	s.hubs[g.ID] = hub
	s.Mutex.Unlock()

	g.BroadcastFn = hub.broadcast

	g.OnRoundRecorded = func(sessionID uuid.UUID, rec models.RoundRecord) {
		entry := cache.RoundEntry{
			SessionID:   sessionID,
			Round:       rec.Round,
			ExplainerID: rec.ExplainerID,
			Deltas:      rec.Deltas,
			Timestamp:   time.Now().UnixMilli(),
		}
		// Publish off the game lock.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cache.PublishRound(ctx, entry); err != nil {
				log.Warnf("publish round %d for session %s: %v", rec.Round, sessionID, err)
			}
		}()
	}

	g.OnSessionEnd = func(sessionID uuid.UUID, result models.SessionResult) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.RecordSessionResult(ctx, sessionID, result); err != nil {
			log.Warnf("persist result for session %s: %v", sessionID, err)
		}
		s.closeHub(sessionID)
	}

	s.Store.Add(g)
	return g
}

func (s *Server) hub(id uuid.UUID) *sessionHub {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return s.hubs[id]
}

func (s *Server) closeHub(id uuid.UUID) {
	s.Mutex.Lock()
	hub := s.hubs[id]
	delete(s.hubs, id)
	s.Mutex.Unlock()
	if hub != nil {
		hub.closeAll()
	}
}
