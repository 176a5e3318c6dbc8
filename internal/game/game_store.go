// internal/game/game_store.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps live sessions in memory, keyed by session id.
type Store struct {
	mu    sync.Mutex
	games map[uuid.UUID]*Game
}

// NewStore returns an empty in-memory session store.
func NewStore() *Store {
	return &Store{
		games: make(map[uuid.UUID]*Game),
	}
}

func (s *Store) Add(g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *Store) Get(id uuid.UUID) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// List returns the stored sessions in no particular order.
func (s *Store) List() []*Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out
}
