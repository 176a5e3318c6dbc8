package models

// Player is one participant in a session. The ID is assigned by the caller at
// session start and never changes; Score is mutated only through the ledger.
type Player struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RosterEntry is the {id, name} input shape the caller supplies per player at
// session start. Scores always start at zero.
type RosterEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
