// internal/game/ledger.go
package game

import "github.com/nyonnyola/nyonnyola/internal/models"

// Ledger is the single mutation path for player scores. The engine applies
// word-toggle deltas through it and diffs snapshots at turn boundaries, so a
// player's score is always the sum of every signed delta ever applied.
type Ledger struct {
	players []*models.Player
}

// NewLedger wraps the session roster. The ledger shares the player structs
// with the engine; it does not copy them.
func NewLedger(players []*models.Player) *Ledger {
	return &Ledger{players: players}
}

// ApplyDelta adjusts exactly one player's score. Unknown ids are ignored.
func (l *Ledger) ApplyDelta(playerID int64, delta int) {
	for _, p := range l.players {
		if p.ID == playerID {
			p.Score += delta
			return
		}
	}
}

// Snapshot returns an immutable copy of all current scores keyed by player
// id, suitable for diffing against a later snapshot.
func (l *Ledger) Snapshot() map[int64]int {
	snap := make(map[int64]int, len(l.players))
	for _, p := range l.players {
		snap[p.ID] = p.Score
	}
	return snap
}
