// internal/game/events.go
package game

// GameEventType is an enum-like type for broadcasting session transitions.
type GameEventType string

const (
	EventTurnStart     GameEventType = "turn_start"     // idle => playing
	EventTimerTick     GameEventType = "timer_tick"     // countdown decrement while playing
	EventWordCorrect   GameEventType = "word_correct"   // word entered correct
	EventWordSkipped   GameEventType = "word_skipped"   // word entered skipped
	EventWordReset     GameEventType = "word_reset"     // word returned to pending
	EventAllCorrect    GameEventType = "all_correct"    // whole card correct, bonus review
	EventAllCorrectEnd GameEventType = "all_correct_end" // bonus display window elapsed
	EventTurnReview    GameEventType = "turn_review"    // playing => review (done or expiry)
	EventNextExplainer GameEventType = "next_explainer" // advance accepted, rotation pending
	EventStateSync     GameEventType = "state_sync"     // full snapshot after rotation
	EventSessionEnd    GameEventType = "session_end"    // terminal
)

// EventPlayer identifies a player within GameEvent payloads.
type EventPlayer struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// EventWord carries the word involved in a toggle event and its new state.
type EventWord struct {
	Index int       `json:"index"`
	Word  string    `json:"word,omitempty"`
	State WordState `json:"state"`
}

// GameEvent holds data about a committed transition, broadcast to clients in
// a consistent format. It is purely observational: the engine's correctness
// never depends on anyone receiving it.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	Player *EventPlayer  `json:"player,omitempty"`
	Word   *EventWord    `json:"word,omitempty"`

	// Payload carries miscellaneous fields (deltas, scores, timers).
	Payload map[string]interface{} `json:"payload,omitempty"`

	// State embeds a full render snapshot on the larger transitions.
	State *LiveState `json:"state,omitempty"`
}
