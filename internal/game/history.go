// internal/game/history.go
package game

import "github.com/nyonnyola/nyonnyola/internal/models"

// HistoryRecorder keeps the append-only round log consumed by the scoreboard.
// Records are never mutated or removed once appended.
type HistoryRecorder struct {
	rounds []models.RoundRecord
}

// Record computes each player's earned delta between the start and end
// snapshots and appends an immutable RoundRecord. A player absent from the
// baseline is treated as having started at zero.
func (h *HistoryRecorder) Record(round int, explainerID int64, start, end map[int64]int) models.RoundRecord {
	deltas := make(map[int64]int, len(end))
	for id, score := range end {
		deltas[id] = score - start[id]
	}
	rec := models.RoundRecord{Round: round, ExplainerID: explainerID, Deltas: deltas}
	h.rounds = append(h.rounds, rec)
	return rec
}

// Rounds returns a copy of the recorded rounds in order.
func (h *HistoryRecorder) Rounds() []models.RoundRecord {
	out := make([]models.RoundRecord, len(h.rounds))
	copy(out, h.rounds)
	return out
}

// Len returns the number of rounds recorded so far.
func (h *HistoryRecorder) Len() int {
	return len(h.rounds)
}
