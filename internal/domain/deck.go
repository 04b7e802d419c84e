package domain

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

const (
	// CardsPerDeck is one deck: 52 ranked cards plus WildsPerDeck jokers.
	CardsPerDeck = 54
	// WildsPerDeck is the joker count in a single deck.
	WildsPerDeck = 2
	// TwoDeckThreshold is the player count at which a second deck is added.
	TwoDeckThreshold = 4
)

// NewDeck builds the draw pile for the given player count: one 54-card deck
// for 2-3 players, two combined decks for 4 and up. Every card instance gets
// a fresh ID so identical copies stay distinguishable.
func NewDeck(playerCount int) []Card {
	copies := 1
	if playerCount >= TwoDeckThreshold {
		copies = 2
	}
	deck := make([]Card, 0, copies*CardsPerDeck)
	for d := 0; d < copies; d++ {
		for s := Hearts; s <= Spades; s++ {
			for r := Ace; r <= King; r++ {
				deck = append(deck, Card{ID: uuid.NewString(), Suit: s, Rank: r})
			}
		}
		for w := 0; w < WildsPerDeck; w++ {
			deck = append(deck, Card{ID: uuid.NewString(), Suit: SuitWild, Rank: RankWild})
		}
	}
	return deck
}

// ShuffleDeck returns a uniformly shuffled copy of the given deck.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortHand orders a hand by suit then sort order, jokers last.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit < cards[j].Suit
		}
		return cards[i].SortOrder() < cards[j].SortOrder()
	})
}
