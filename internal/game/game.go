// internal/game/game.go
package game

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyonnyola/nyonnyola/internal/models"
)

// TurnState is the authoritative mode gate for all score-mutating operations.
type TurnState string

const (
	TurnIdle    TurnState = "idle"    // card hidden, timer stopped, no interaction
	TurnPlaying TurnState = "playing" // card visible, timer running, toggles accepted
	TurnReview  TurnState = "review"  // summary shown, timer stopped, toggles rejected
)

// WordState tags one word on the active card.
type WordState string

const (
	WordPending WordState = "pending"
	WordCorrect WordState = "correct"
	WordSkipped WordState = "skipped"
)

// Non-functional timing defaults. Both are presentation niceties: zero
// disables the bonus window, and a zero advance delay rotates synchronously,
// without changing any contract.
const (
	DefaultAdvanceDelay     = 800 * time.Millisecond
	DefaultAllCorrectWindow = 10 * time.Second
	DefaultRoundTimeSec     = 60
)

// TurnSummary is derived from the word states and the ledger diff since the
// turn started. It is frozen the moment the turn leaves playing.
type TurnSummary struct {
	Correct    int  `json:"correct"`
	Skipped    int  `json:"skipped"`
	Unguessed  int  `json:"unguessed"`
	Total      int  `json:"total"`
	Earned     int  `json:"earned"`
	AllCorrect bool `json:"allCorrect"`
}

// OnSessionEndFunc handles a finished session's final result, e.g. persisting
// it or broadcasting a scoreboard.
type OnSessionEndFunc func(sessionID uuid.UUID, result models.SessionResult)

// OnRoundRecordedFunc observes each RoundRecord as it is appended.
type OnRoundRecordedFunc func(sessionID uuid.UUID, rec models.RoundRecord)

// Game holds the entire state for a single session in memory: the roster, the
// deck, the turn state machine with its timers, and the round history. All
// mutations go through its exported operations; there is no ambient mutation
// path.
type Game struct {
	ID uuid.UUID

	Options models.Options
	Players []*models.Player

	pool             []string
	Deck             Deck
	CurrentCardIndex int

	ExplainerIndex int
	TurnState      TurnState
	WordStates     []WordState
	TimeLeft       int

	// TurnID increments each time a turn starts. Timer callbacks compare it
	// so a stale fire for an already-closed turn is discarded.
	TurnID int

	ledger   *Ledger
	history  *HistoryRecorder
	baseline map[int64]int
	summary  *TurnSummary
	recorded bool

	AdvanceDelay     time.Duration
	AllCorrectWindow time.Duration

	// TickInterval overrides the countdown tick period; zero means the
	// normal one second. Tests shorten it.
	TickInterval time.Duration

	tickTimer       *time.Timer
	allCorrectTimer *time.Timer
	advanceTimer    *time.Timer
	advancePending  bool

	Ended bool

	Mu sync.Mutex

	// BroadcastFn is the observational event sink. If nil, no events are sent.
	BroadcastFn func(ev GameEvent)

	// OnRoundRecorded, if set, is invoked after each round is appended to the
	// history. Assumes lock is held; implementations must not call back in.
	OnRoundRecorded OnRoundRecordedFunc

	// OnSessionEnd is invoked once with the final result when the session
	// ends. Runs on its own goroutine.
	OnSessionEnd OnSessionEndFunc
}

// NewGame builds a session from the roster, options, and word pool, with the
// first deck already dealt and the first player as explainer. Scores start at
// zero.
func NewGame(roster []models.RosterEntry, opts models.Options, pool []string) *Game {
	id, _ := uuid.NewRandom()
	players := make([]*models.Player, 0, len(roster))
	for _, r := range roster {
		players = append(players, &models.Player{ID: r.ID, Name: r.Name})
	}
	if opts.RoundTimeSec <= 0 {
		opts.RoundTimeSec = DefaultRoundTimeSec
	}
	g := &Game{
		ID:               id,
		Options:          opts,
		Players:          players,
		pool:             append([]string(nil), pool...),
		TurnState:        TurnIdle,
		TimeLeft:         opts.RoundTimeSec,
		AdvanceDelay:     DefaultAdvanceDelay,
		AllCorrectWindow: DefaultAllCorrectWindow,
		ledger:           NewLedger(players),
		history:          &HistoryRecorder{},
	}
	g.rebuildDeck()
	return g
}

// StartTurn moves idle => playing: snapshots the ledger as the turn baseline,
// resets the word states and countdown, and starts the 1-second tick. A call
// in any other state is a silent no-op.
func (g *Game) StartTurn() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Ended || g.TurnState != TurnIdle || len(g.Players) == 0 {
		return
	}
	g.TurnID++
	g.TurnState = TurnPlaying
	g.baseline = g.ledger.Snapshot()
	g.summary = nil
	g.recorded = false
	g.resetWordStates()
	g.TimeLeft = g.Options.RoundTimeSec
	g.scheduleTick()
	g.fireEvent(GameEvent{Type: EventTurnStart, Player: g.explainerEvent(), State: g.liveStateLocked()})
}

// ToggleWord flips the word at index i while playing. With no forced state
// the default flip is pending => correct and anything else back to pending;
// forced may set correct or skipped directly. The signed score delta lands on
// the current explainer only. Out-of-range indices and wrong-state calls are
// silent no-ops.
func (g *Game) ToggleWord(i int, forced WordState) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Ended || g.TurnState != TurnPlaying {
		return
	}
	card := g.currentCard()
	if len(card) == 0 || i < 0 || i >= len(card) {
		return
	}

	prev := g.WordStates[i]
	next := forced
	if next != WordCorrect && next != WordSkipped {
		if prev == WordPending {
			next = WordCorrect
		} else {
			next = WordPending
		}
	}
	if next == prev {
		return
	}
	g.WordStates[i] = next

	delta := 0
	if prev != WordCorrect && next == WordCorrect {
		delta++
	}
	if prev == WordCorrect && next != WordCorrect {
		delta--
	}
	if g.Options.PenaltyEnabled {
		if prev != WordSkipped && next == WordSkipped {
			delta--
		}
		if prev == WordSkipped && next != WordSkipped {
			delta++
		}
	}

	explainer := g.Players[g.ExplainerIndex]
	if delta != 0 {
		g.ledger.ApplyDelta(explainer.ID, delta)
	}

	ev := GameEvent{
		Player:  g.explainerEvent(),
		Word:    &EventWord{Index: i, Word: card[i], State: next},
		Payload: map[string]interface{}{"delta": delta, "score": explainer.Score},
	}
	switch next {
	case WordCorrect:
		ev.Type = EventWordCorrect
	case WordSkipped:
		ev.Type = EventWordSkipped
	default:
		ev.Type = EventWordReset
	}
	g.fireEvent(ev)

	// A fully correct card pre-empts the countdown with the bonus review.
	if g.allWordsCorrect() {
		g.finishTurnAllCorrect()
	}
}

// Done moves playing => review on explicit user action.
func (g *Game) Done() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Ended || g.TurnState != TurnPlaying {
		return
	}
	g.finishTurn(false)
}

// Advance records the finished round and rotates to the next explainer. The
// rotation itself runs after AdvanceDelay so a "next player" notice can
// display; a zero delay rotates synchronously before Advance returns. Calls
// outside review, or while a rotation is already pending, are no-ops.
func (g *Game) Advance() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Ended || g.TurnState != TurnReview || g.advancePending {
		return
	}
	g.stopAllCorrectTimer()

	rec := g.recordRound()
	nextIndex := (g.ExplainerIndex + 1) % len(g.Players)
	next := g.Players[nextIndex]
	g.fireEvent(GameEvent{
		Type:    EventNextExplainer,
		Player:  &EventPlayer{ID: next.ID, Name: next.Name},
		Payload: map[string]interface{}{"round": rec.Round},
	})

	if g.AdvanceDelay <= 0 {
		g.completeAdvance(nextIndex)
		return
	}
	g.advancePending = true
	turnID := g.TurnID
	g.advanceTimer = time.AfterFunc(g.AdvanceDelay, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.Ended || !g.advancePending || g.TurnID != turnID {
			return
		}
		g.advancePending = false
		g.completeAdvance(nextIndex)
	})
}

// EndSession terminates the session from any state. It stops every timer,
// finalizes a RoundRecord for a turn that started but was never recorded, and
// returns the final roster with the ordered round history. Subsequent calls
// return the same result.
func (g *Game) EndSession() models.SessionResult {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Ended {
		return g.resultLocked()
	}
	g.stopTick()
	g.stopAllCorrectTimer()
	g.stopAdvanceTimer()

	if g.baseline != nil && !g.recorded {
		g.recordRound()
	}
	g.Ended = true

	res := g.resultLocked()
	g.fireEvent(GameEvent{Type: EventSessionEnd, State: g.liveStateLocked()})
	if g.OnSessionEnd != nil {
		go g.OnSessionEnd(g.ID, res)
	}
	log.Printf("Session %s ended after %d round(s).", g.ID, len(res.Rounds))
	return res
}

// --- internal transitions; all assume the lock is held ---

// scheduleTick arms the next 1-second countdown tick. The callback re-checks
// state and TurnID so a tick armed for a turn that has since closed cannot
// mutate it; reaching zero triggers the expiry transition exactly once.
func (g *Game) scheduleTick() {
	if g.tickTimer != nil {
		g.tickTimer.Stop()
	}
	interval := g.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	turnID := g.TurnID
	g.tickTimer = time.AfterFunc(interval, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.Ended || g.TurnState != TurnPlaying || g.TurnID != turnID {
			return
		}
		g.TimeLeft--
		if g.TimeLeft <= 0 {
			g.TimeLeft = 0
			g.finishTurn(true)
			return
		}
		g.fireEvent(GameEvent{Type: EventTimerTick, Payload: map[string]interface{}{"timeLeft": g.TimeLeft}})
		g.scheduleTick()
	})
}

// finishTurn stops the countdown and freezes the turn summary for review.
func (g *Game) finishTurn(expired bool) {
	g.stopTick()
	g.TurnState = TurnReview
	g.summary = g.computeSummary()
	ev := GameEvent{Type: EventTurnReview, Player: g.explainerEvent(), State: g.liveStateLocked()}
	if expired {
		ev.Payload = map[string]interface{}{"expired": true}
	}
	g.fireEvent(ev)
}

// finishTurnAllCorrect is the bonus path: every word on a non-empty card is
// correct, so review begins immediately with the AllCorrect flag raised. The
// flag clears on its own after AllCorrectWindow.
func (g *Game) finishTurnAllCorrect() {
	g.stopTick()
	g.TurnState = TurnReview
	g.summary = g.computeSummary()
	g.summary.AllCorrect = true
	g.fireEvent(GameEvent{Type: EventAllCorrect, Player: g.explainerEvent(), State: g.liveStateLocked()})

	if g.AllCorrectWindow <= 0 {
		return
	}
	turnID := g.TurnID
	g.allCorrectTimer = time.AfterFunc(g.AllCorrectWindow, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.Ended || g.TurnState != TurnReview || g.TurnID != turnID || g.summary == nil {
			return
		}
		g.summary.AllCorrect = false
		g.fireEvent(GameEvent{Type: EventAllCorrectEnd})
	})
}

// recordRound diffs the ledger against the turn baseline and appends the
// round to the history. The recorded flag keeps EndSession from appending the
// same turn twice.
func (g *Game) recordRound() models.RoundRecord {
	start := g.baseline
	if start == nil {
		start = map[int64]int{}
	}
	var explainerID int64
	if len(g.Players) > 0 {
		explainerID = g.Players[g.ExplainerIndex].ID
	}
	rec := g.history.Record(g.history.Len()+1, explainerID, start, g.ledger.Snapshot())
	g.recorded = true
	if g.OnRoundRecorded != nil {
		g.OnRoundRecorded(g.ID, rec)
	}
	return rec
}

// completeAdvance performs the actual rotation back to idle: next explainer,
// fresh deck, cleared word states and summary.
func (g *Game) completeAdvance(nextIndex int) {
	if len(g.Players) > 0 {
		g.ExplainerIndex = nextIndex % len(g.Players)
	}
	g.rebuildDeck()
	g.TurnState = TurnIdle
	g.summary = nil
	g.baseline = nil
	g.TimeLeft = g.Options.RoundTimeSec
	g.fireEvent(GameEvent{Type: EventStateSync, State: g.liveStateLocked()})
}

// rebuildDeck reshuffles the pool into a new deck and resets the word states
// for the new active card.
func (g *Game) rebuildDeck() {
	g.Deck = BuildDeck(g.pool)
	g.CurrentCardIndex = 0
	g.resetWordStates()
}

// resetWordStates sizes the live word-state sequence to the active card, all
// pending.
func (g *Game) resetWordStates() {
	card := g.currentCard()
	g.WordStates = make([]WordState, len(card))
	for i := range g.WordStates {
		g.WordStates[i] = WordPending
	}
}

// currentCard returns the active card, or nil when the deck is exhausted or
// empty.
func (g *Game) currentCard() Card {
	if g.CurrentCardIndex < 0 || g.CurrentCardIndex >= len(g.Deck) {
		return nil
	}
	return g.Deck[g.CurrentCardIndex]
}

func (g *Game) allWordsCorrect() bool {
	if len(g.WordStates) == 0 {
		return false
	}
	for _, ws := range g.WordStates {
		if ws != WordCorrect {
			return false
		}
	}
	return true
}

// computeSummary derives the turn summary from the word states and the score
// delta since the turn baseline.
func (g *Game) computeSummary() *TurnSummary {
	s := &TurnSummary{Total: len(g.currentCard())}
	for _, ws := range g.WordStates {
		switch ws {
		case WordCorrect:
			s.Correct++
		case WordSkipped:
			s.Skipped++
		}
	}
	s.Unguessed = s.Total - s.Correct - s.Skipped
	if g.baseline != nil && len(g.Players) > 0 {
		explainer := g.Players[g.ExplainerIndex]
		s.Earned = explainer.Score - g.baseline[explainer.ID]
	}
	return s
}

// resultLocked builds the final payload: players ranked by score (ties keep
// roster order) plus the ordered round history.
func (g *Game) resultLocked() models.SessionResult {
	players := make([]models.Player, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, *p)
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return models.SessionResult{Players: players, Rounds: g.history.Rounds()}
}

func (g *Game) explainerEvent() *EventPlayer {
	if len(g.Players) == 0 {
		return nil
	}
	p := g.Players[g.ExplainerIndex]
	return &EventPlayer{ID: p.ID, Name: p.Name}
}

func (g *Game) stopTick() {
	if g.tickTimer != nil {
		g.tickTimer.Stop()
		g.tickTimer = nil
	}
}

func (g *Game) stopAllCorrectTimer() {
	if g.allCorrectTimer != nil {
		g.allCorrectTimer.Stop()
		g.allCorrectTimer = nil
	}
}

func (g *Game) stopAdvanceTimer() {
	if g.advanceTimer != nil {
		g.advanceTimer.Stop()
		g.advanceTimer = nil
	}
	g.advancePending = false
}

// fireEvent invokes the event sink, if any. Assumes lock is held.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}
