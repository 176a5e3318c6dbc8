// internal/game/deck.go
package game

import (
	"math/rand"
	"time"
)

// PerCardSize is the number of words drawn onto a single card.
const PerCardSize = 7

// Card is an ordered batch of words for one turn. Once drawn it is never
// mutated, only replaced when the deck is rebuilt.
type Card []string

// Deck is the full ordered card sequence for a session, consumed front to
// back, one card per turn. It is rebuilt wholesale on the boundary between
// turns, never incrementally.
type Deck []Card

// BuildDeck shuffles the pool into a uniform random order and partitions it
// into contiguous cards of PerCardSize words. A trailing chunk shorter than
// PerCardSize is still emitted as a card. An empty pool yields an empty deck;
// consumers treat a missing current card as "no words to show".
func BuildDeck(pool []string) Deck {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var deck Deck
	for i := 0; i < len(shuffled); i += PerCardSize {
		end := i + PerCardSize
		if end > len(shuffled) {
			end = len(shuffled)
		}
		deck = append(deck, Card(shuffled[i:end]))
	}
	return deck
}
