// internal/models/round.go
package models

// RoundRecord is the immutable per-turn scoring snapshot appended to the
// session history. Deltas maps player id to the points that player earned
// during the turn; only the explainer's entry can be non-zero.
type RoundRecord struct {
	Round       int           `json:"round"`
	ExplainerID int64         `json:"explainerId"`
	Deltas      map[int64]int `json:"deltas"`
}

// SessionResult is the final payload handed to the caller on session end:
// every player's final score plus the full ordered round history, including
// the just-completed (possibly in-progress) turn.
type SessionResult struct {
	Players []Player      `json:"players"`
	Rounds  []RoundRecord `json:"rounds"`
}
