// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/nyonnyola/nyonnyola/internal/models"
)

// LiveState is the push/pull render snapshot exposed on every transition for
// a presentation layer. The card and word states are withheld while idle, so
// the next explainer cannot peek before pressing start.
type LiveState struct {
	SessionID  uuid.UUID       `json:"sessionId"`
	TurnState  TurnState       `json:"turnState"`
	Round      int             `json:"round"` // rounds completed so far
	Explainer  *EventPlayer    `json:"explainer,omitempty"`
	Card       Card            `json:"card,omitempty"`
	WordStates []WordState     `json:"wordStates,omitempty"`
	TimeLeft   int             `json:"timeLeft"`
	Summary    *TurnSummary    `json:"turnSummary,omitempty"`
	Players    []models.Player `json:"players"`
	Ended      bool            `json:"ended,omitempty"`
}

// LiveState returns the current render snapshot.
func (g *Game) LiveState() LiveState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return *g.liveStateLocked()
}

// liveStateLocked builds the snapshot. Assumes lock is held.
func (g *Game) liveStateLocked() *LiveState {
	st := &LiveState{
		SessionID: g.ID,
		TurnState: g.TurnState,
		Round:     g.history.Len(),
		TimeLeft:  g.TimeLeft,
		Explainer: g.explainerEvent(),
		Ended:     g.Ended,
	}
	for _, p := range g.Players {
		st.Players = append(st.Players, *p)
	}
	if g.TurnState != TurnIdle {
		st.Card = g.currentCard()
		st.WordStates = append([]WordState(nil), g.WordStates...)
	}
	if g.summary != nil {
		s := *g.summary
		st.Summary = &s
	}
	return st
}
