package domain

import "fmt"

// Suit identifies one of the four board suits, or the wild pseudo-suit.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
	SuitWild
)

// NumSuits counts the suits that own a board sequence; wilds have none.
const NumSuits = 4

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	case Spades:
		return "S"
	case SuitWild:
		return "W"
	}
	return "?"
}

// Rank is a card rank. Standard ranks carry their sort order as value.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King

	// RankWild doubles as the wild sort order so wilds always sort last.
	RankWild Rank = 99
)

// SequenceRank must be placed before a suit's run can extend in either direction.
const SequenceRank = Seven

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case RankWild:
		return "JOKER"
	}
	if r >= Two && r <= Ten {
		return fmt.Sprintf("%d", int(r))
	}
	return "?"
}

// Card is a single immutable card instance. The ID distinguishes identical
// suit/rank copies when two decks are in play; declared wild identities are
// recorded separately and never mutate the card.
type Card struct {
	ID   string `json:"id"`
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
}

// IsWild reports whether the card is a joker.
func (c Card) IsWild() bool { return c.Rank == RankWild }

// SortOrder returns the card's position on a suit sequence (1..13, 99 for wilds).
func (c Card) SortOrder() int { return int(c.Rank) }

// PointValue returns the card's scoring weight when left in hand.
func (c Card) PointValue() int {
	switch {
	case c.IsWild():
		return WildPoints
	case c.Rank == Seven:
		return SevenPoints
	case c.Rank >= Jack:
		return FacePoints
	default:
		return int(c.Rank)
	}
}

func (c Card) String() string {
	if c.IsWild() {
		return "JOKER"
	}
	return c.Rank.String() + c.Suit.String()
}

const (
	// WildPoints is the liability of a joker still held at round end.
	WildPoints = 30
	// SevenPoints prices the sequence-starting rank above its face value.
	SevenPoints = 15
	// FacePoints is the value of Jack, Queen and King.
	FacePoints = 10
)

// Declaration binds a wild card's ID to the identity it impersonates.
// One is recorded the moment the wild is played (to the board or inside a
// meld or claim) and never again; the log is global and append-only.
type Declaration struct {
	CardID string `json:"card_id"`
	Suit   Suit   `json:"suit"`
	Rank   Rank   `json:"rank"`
}
