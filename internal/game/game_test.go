// internal/game/game_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyonnyola/nyonnyola/internal/models"
)

// mockBroadcaster collects events instead of pushing them over a WebSocket.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []GameEvent
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = append(mb.events, ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.events = nil
}

func (mb *mockBroadcaster) last() *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.events) == 0 {
		return nil
	}
	return &mb.events[len(mb.events)-1]
}

func (mb *mockBroadcaster) byType(t GameEventType) []GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []GameEvent
	for _, ev := range mb.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func testRoster() []models.RosterEntry {
	return []models.RosterEntry{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Cara"},
	}
}

// setupTestGame builds a 3-player session over a single 7-word card, with the
// presentation delays zeroed so transitions complete synchronously.
func setupTestGame(t *testing.T, penalty bool) (*Game, *mockBroadcaster) {
	t.Helper()
	g := NewGame(testRoster(), models.Options{RoundTimeSec: 30, PenaltyEnabled: penalty}, poolOfSize(7))
	g.AdvanceDelay = 0
	g.AllCorrectWindow = 0
	mb := &mockBroadcaster{}
	g.BroadcastFn = mb.broadcastFn
	return g, mb
}

func playerScore(g *Game, id int64) int {
	for _, p := range g.Players {
		if p.ID == id {
			return p.Score
		}
	}
	return 0
}

func TestStartTurn(t *testing.T) {
	g, mb := setupTestGame(t, false)
	require.Equal(t, TurnIdle, g.LiveState().TurnState)

	g.StartTurn()

	st := g.LiveState()
	assert.Equal(t, TurnPlaying, st.TurnState)
	assert.Equal(t, 30, st.TimeLeft)
	require.Len(t, st.WordStates, 7)
	for _, ws := range st.WordStates {
		assert.Equal(t, WordPending, ws)
	}
	require.NotNil(t, st.Explainer)
	assert.Equal(t, int64(1), st.Explainer.ID)

	last := mb.byType(EventTurnStart)
	require.Len(t, last, 1)

	// A second start while playing is a no-op.
	g.StartTurn()
	assert.Len(t, mb.byType(EventTurnStart), 1)
}

func TestToggleReversibility(t *testing.T) {
	g, mb := setupTestGame(t, false)
	g.StartTurn()

	g.ToggleWord(0, "")
	assert.Equal(t, 1, playerScore(g, 1))
	assert.Equal(t, WordCorrect, g.LiveState().WordStates[0])
	last := mb.last()
	require.NotNil(t, last)
	assert.Equal(t, EventWordCorrect, last.Type)

	g.ToggleWord(0, "")
	assert.Equal(t, 0, playerScore(g, 1), "a toggle pair must return the score to its pre-toggle value")
	assert.Equal(t, WordPending, g.LiveState().WordStates[0])
	assert.Equal(t, EventWordReset, mb.last().Type)
}

func TestPenaltySymmetry(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		g, _ := setupTestGame(t, true)
		g.StartTurn()

		g.ToggleWord(2, WordSkipped)
		assert.Equal(t, -1, playerScore(g, 1))

		g.ToggleWord(2, "") // skipped => pending
		assert.Equal(t, 0, playerScore(g, 1), "skip then revert must net zero")
	})

	t.Run("disabled", func(t *testing.T) {
		g, _ := setupTestGame(t, false)
		g.StartTurn()

		g.ToggleWord(2, WordSkipped)
		assert.Equal(t, 0, playerScore(g, 1), "skips never change the score without the penalty")

		g.ToggleWord(2, "")
		assert.Equal(t, 0, playerScore(g, 1))
	})
}

func TestForcedTransitions(t *testing.T) {
	g, _ := setupTestGame(t, true)
	g.StartTurn()

	// correct => skipped: lose the correct point and take the penalty.
	g.ToggleWord(0, WordCorrect)
	require.Equal(t, 1, playerScore(g, 1))
	g.ToggleWord(0, WordSkipped)
	assert.Equal(t, -1, playerScore(g, 1))

	// skipped => correct: refund the penalty and earn the point.
	g.ToggleWord(0, WordCorrect)
	assert.Equal(t, 1, playerScore(g, 1))

	// Forcing the state it already has changes nothing.
	g.ToggleWord(0, WordCorrect)
	assert.Equal(t, 1, playerScore(g, 1))
	assert.Equal(t, WordCorrect, g.LiveState().WordStates[0])
}

func TestToggleIgnoredOutsidePlaying(t *testing.T) {
	g, _ := setupTestGame(t, false)

	g.ToggleWord(0, "") // idle
	assert.Equal(t, 0, playerScore(g, 1))

	g.StartTurn()
	g.Done()
	g.ToggleWord(0, "") // review
	assert.Equal(t, 0, playerScore(g, 1))
	assert.Equal(t, TurnReview, g.LiveState().TurnState)
}

func TestToggleOutOfRangeNoop(t *testing.T) {
	g, mb := setupTestGame(t, false)
	g.StartTurn()
	mb.clear()

	g.ToggleWord(-1, "")
	g.ToggleWord(7, "")
	g.ToggleWord(100, WordCorrect)

	assert.Equal(t, 0, playerScore(g, 1))
	assert.Nil(t, mb.last())
}

func TestDoneFreezesSummary(t *testing.T) {
	g, _ := setupTestGame(t, true)
	g.StartTurn()

	g.ToggleWord(0, "")
	g.ToggleWord(1, "")
	g.ToggleWord(2, WordSkipped)
	g.Done()

	st := g.LiveState()
	assert.Equal(t, TurnReview, st.TurnState)
	require.NotNil(t, st.Summary)
	assert.Equal(t, 2, st.Summary.Correct)
	assert.Equal(t, 1, st.Summary.Skipped)
	assert.Equal(t, 4, st.Summary.Unguessed)
	assert.Equal(t, 7, st.Summary.Total)
	assert.Equal(t, 1, st.Summary.Earned)
	assert.False(t, st.Summary.AllCorrect)

	// Done again is a no-op.
	g.Done()
	assert.Equal(t, TurnReview, g.LiveState().TurnState)
}

func TestAllCorrectTrigger(t *testing.T) {
	g, mb := setupTestGame(t, false)
	g.StartTurn()

	for i := 0; i < 7; i++ {
		g.ToggleWord(i, "")
	}

	st := g.LiveState()
	assert.Equal(t, TurnReview, st.TurnState, "a fully correct card must force review without done or expiry")
	require.NotNil(t, st.Summary)
	assert.True(t, st.Summary.AllCorrect)
	assert.Equal(t, 7, st.Summary.Correct)
	assert.Equal(t, 7, st.Summary.Earned)
	assert.Len(t, mb.byType(EventAllCorrect), 1)
}

func TestAllCorrectWindowClears(t *testing.T) {
	g, mb := setupTestGame(t, false)
	g.AllCorrectWindow = 40 * time.Millisecond
	g.StartTurn()

	for i := 0; i < 7; i++ {
		g.ToggleWord(i, "")
	}
	require.True(t, g.LiveState().Summary.AllCorrect)

	time.Sleep(100 * time.Millisecond)

	st := g.LiveState()
	assert.Equal(t, TurnReview, st.TurnState)
	require.NotNil(t, st.Summary)
	assert.False(t, st.Summary.AllCorrect, "the bonus flag must clear after the display window")
	assert.Len(t, mb.byType(EventAllCorrectEnd), 1)
}

func TestTimerExpiry(t *testing.T) {
	g, mb := setupTestGame(t, false)
	g.TickInterval = 10 * time.Millisecond
	g.Options.RoundTimeSec = 2
	g.StartTurn()

	time.Sleep(150 * time.Millisecond)

	st := g.LiveState()
	assert.Equal(t, TurnReview, st.TurnState)
	assert.Equal(t, 0, st.TimeLeft)

	reviews := mb.byType(EventTurnReview)
	require.Len(t, reviews, 1, "expiry must fire the review transition exactly once")
	assert.Equal(t, true, reviews[0].Payload["expired"])
}

func TestTimerCancelledOnDone(t *testing.T) {
	g, mb := setupTestGame(t, false)
	g.TickInterval = 10 * time.Millisecond
	g.Options.RoundTimeSec = 5
	g.StartTurn()
	g.Done()

	frozen := g.LiveState().TimeLeft
	time.Sleep(80 * time.Millisecond)

	st := g.LiveState()
	assert.Equal(t, TurnReview, st.TurnState)
	assert.Equal(t, frozen, st.TimeLeft, "no tick may land after the turn left playing")
	assert.Len(t, mb.byType(EventTurnReview), 1)
}

func TestAdvanceRotation(t *testing.T) {
	g, _ := setupTestGame(t, false)

	for turn := 0; turn < len(g.Players); turn++ {
		wantID := int64(turn + 1)
		st := g.LiveState()
		require.NotNil(t, st.Explainer)
		require.Equal(t, wantID, st.Explainer.ID)

		g.StartTurn()
		g.Done()
		g.Advance()
	}

	st := g.LiveState()
	assert.Equal(t, int64(1), st.Explainer.ID, "after P turns the explainer returns to the first player")
	assert.Equal(t, TurnIdle, st.TurnState)
	assert.Equal(t, 3, st.Round)
}

func TestAdvanceDelayedRotation(t *testing.T) {
	g, _ := setupTestGame(t, false)
	g.AdvanceDelay = 30 * time.Millisecond

	g.StartTurn()
	g.Done()
	g.Advance()

	assert.Equal(t, TurnReview, g.LiveState().TurnState, "rotation waits for the inter-turn notice")

	// Repeated advance while one is pending must not double-rotate.
	g.Advance()

	time.Sleep(80 * time.Millisecond)
	st := g.LiveState()
	assert.Equal(t, TurnIdle, st.TurnState)
	assert.Equal(t, int64(2), st.Explainer.ID)
	assert.Equal(t, 1, st.Round)
}

func TestAdvanceIgnoredOutsideReview(t *testing.T) {
	g, _ := setupTestGame(t, false)

	g.Advance() // idle
	assert.Equal(t, TurnIdle, g.LiveState().TurnState)
	assert.Equal(t, int64(1), g.LiveState().Explainer.ID)

	g.StartTurn()
	g.Advance() // playing
	assert.Equal(t, TurnPlaying, g.LiveState().TurnState)
}

// TestScenario walks the reference session: Alice explains, marks words 0-2
// correct and word 3 skipped with the penalty on, then done and advance.
func TestScenario(t *testing.T) {
	g, _ := setupTestGame(t, true)

	g.StartTurn()
	g.ToggleWord(0, "")
	g.ToggleWord(1, "")
	g.ToggleWord(2, "")
	assert.Equal(t, 3, playerScore(g, 1))

	g.ToggleWord(3, WordSkipped)
	assert.Equal(t, 2, playerScore(g, 1))

	g.Done()
	st := g.LiveState()
	require.NotNil(t, st.Summary)
	assert.Equal(t, TurnSummary{Correct: 3, Skipped: 1, Unguessed: 3, Total: 7, Earned: 2}, *st.Summary)

	g.Advance()
	st = g.LiveState()
	assert.Equal(t, int64(2), st.Explainer.ID, "explainer becomes Bob")
	assert.Equal(t, "Bob", st.Explainer.Name)

	res := g.EndSession()
	require.Len(t, res.Rounds, 1)
	rec := res.Rounds[0]
	assert.Equal(t, 1, rec.Round)
	assert.Equal(t, int64(1), rec.ExplainerID)
	assert.Equal(t, map[int64]int{1: 2, 2: 0, 3: 0}, rec.Deltas)
}

// TestRoundBookkeeping plays several rounds and checks that summed round
// deltas reproduce every player's final score.
func TestRoundBookkeeping(t *testing.T) {
	g, _ := setupTestGame(t, true)

	marks := [][]int{{0, 1, 2}, {0}, {0, 1, 2, 3, 4}}
	for _, turn := range marks {
		g.StartTurn()
		for _, i := range turn {
			g.ToggleWord(i, "")
		}
		g.ToggleWord(6, WordSkipped)
		g.Done()
		g.Advance()
	}

	res := g.EndSession()
	require.Len(t, res.Rounds, 3)

	earned := map[int64]int{}
	for _, rec := range res.Rounds {
		for id, d := range rec.Deltas {
			earned[id] += d
		}
	}
	for _, p := range res.Players {
		assert.Equal(t, p.Score, earned[p.ID], "player %d", p.ID)
	}
	assert.Equal(t, 2, earned[1])
	assert.Equal(t, 0, earned[2])
	assert.Equal(t, 4, earned[3])

	// The result ranks players by score, ties in roster order.
	assert.Equal(t, int64(3), res.Players[0].ID)
	assert.Equal(t, int64(1), res.Players[1].ID)
	assert.Equal(t, int64(2), res.Players[2].ID)
}

func TestEndSessionDuringTurn(t *testing.T) {
	g, mb := setupTestGame(t, false)
	g.StartTurn()
	g.ToggleWord(0, "")
	g.ToggleWord(1, "")

	res := g.EndSession()

	require.Len(t, res.Rounds, 1, "the in-progress turn must be finalized")
	assert.Equal(t, map[int64]int{1: 2, 2: 0, 3: 0}, res.Rounds[0].Deltas)
	require.Len(t, res.Players, 3)
	assert.Equal(t, 2, res.Players[0].Score)
	assert.Len(t, mb.byType(EventSessionEnd), 1)

	// The instance is terminal: nothing moves afterwards.
	g.StartTurn()
	g.ToggleWord(2, "")
	assert.Equal(t, 2, playerScore(g, 1))
	assert.Len(t, mb.byType(EventTurnStart), 1)

	again := g.EndSession()
	assert.Equal(t, res, again)
	assert.Len(t, mb.byType(EventSessionEnd), 1)
}

func TestEndSessionNoDoubleRecord(t *testing.T) {
	g, _ := setupTestGame(t, false)
	g.AdvanceDelay = 50 * time.Millisecond

	g.StartTurn()
	g.ToggleWord(0, "")
	g.Done()
	g.Advance() // round recorded, rotation still pending

	res := g.EndSession()
	assert.Len(t, res.Rounds, 1, "an already-recorded turn must not be recorded twice")

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, g.EndSession().Rounds, 1, "the pending rotation must not fire after teardown")
}

func TestEndSessionWhileIdle(t *testing.T) {
	g, _ := setupTestGame(t, false)

	res := g.EndSession()
	assert.Empty(t, res.Rounds)
	require.Len(t, res.Players, 3)
	for _, p := range res.Players {
		assert.Equal(t, 0, p.Score)
	}
}

func TestEmptyPoolDegradesToNoops(t *testing.T) {
	g := NewGame(testRoster(), models.Options{RoundTimeSec: 30}, nil)
	g.AdvanceDelay = 0
	g.AllCorrectWindow = 0

	g.StartTurn()
	st := g.LiveState()
	assert.Equal(t, TurnPlaying, st.TurnState)
	assert.Empty(t, st.Card)
	assert.Empty(t, st.WordStates)

	g.ToggleWord(0, "")
	assert.Equal(t, 0, playerScore(g, 1))

	g.Done()
	st = g.LiveState()
	require.NotNil(t, st.Summary)
	assert.Equal(t, TurnSummary{}, *st.Summary, "an empty card yields an all-zero summary")
	assert.False(t, st.Summary.AllCorrect, "an empty card never counts as all correct")

	g.Advance()
	assert.Equal(t, TurnIdle, g.LiveState().TurnState)
	assert.Equal(t, int64(2), g.LiveState().Explainer.ID)

	res := g.EndSession()
	assert.Len(t, res.Rounds, 1)
}

func TestOnRoundRecordedHook(t *testing.T) {
	g, _ := setupTestGame(t, false)
	var got []models.RoundRecord
	g.OnRoundRecorded = func(_ uuid.UUID, rec models.RoundRecord) {
		got = append(got, rec)
	}

	g.StartTurn()
	g.ToggleWord(0, "")
	g.Done()
	g.Advance()
	g.EndSession()

	require.Len(t, got, 1)
	assert.Equal(t, map[int64]int{1: 1, 2: 0, 3: 0}, got[0].Deltas)
}
