package domain

// Sequence is the contiguous run on the table for one suit. Low and High are
// sort-order bounds seeded at the seven; nothing extends until the seven is
// placed, and once it is, low <= 7 <= high holds forever.
type Sequence struct {
	Low      int
	High     int
	HasSeven bool
}

const sequenceOrder = int(SequenceRank)

// Board maps each suit to its sequence. It is a plain value: copying a Board
// copies the whole table, which keeps transitions and bot lookahead cheap.
type Board [NumSuits]Sequence

// NewBoard seeds every suit at 7/7 with the seven not yet placed.
func NewBoard() Board {
	var b Board
	for i := range b {
		b[i] = Sequence{Low: sequenceOrder, High: sequenceOrder}
	}
	return b
}

// AnyOpen reports whether at least one suit's seven has been placed.
func (b Board) AnyOpen() bool {
	for _, seq := range b {
		if seq.HasSeven {
			return true
		}
	}
	return false
}

// CanExtend reports whether a card of the given suit and sort order would be
// a legal play: the seven while the suit is closed, or exactly one step
// beyond either bound while it is open. No gaps, no skipped sides.
func (b Board) CanExtend(suit Suit, order int) bool {
	if suit < 0 || suit >= NumSuits {
		return false
	}
	seq := b[suit]
	if order == sequenceOrder {
		return !seq.HasSeven
	}
	if !seq.HasSeven {
		return false
	}
	return order == seq.High+1 || order == seq.Low-1
}

// IsPlayable reports whether the card can legally go to the board right now.
// A wild is structurally playable whenever any suit is open; its declared
// identity is vetted separately.
func (b Board) IsPlayable(c Card) bool {
	if c.IsWild() {
		return b.AnyOpen()
	}
	return b.CanExtend(c.Suit, c.SortOrder())
}

// Extend applies an accepted extension. Callers must have checked CanExtend;
// exactly one branch fires per legal call.
func (b *Board) Extend(suit Suit, order int) {
	seq := &b[suit]
	switch {
	case order == sequenceOrder:
		seq.HasSeven = true
	case order == seq.High+1:
		seq.High = order
	case order == seq.Low-1:
		seq.Low = order
	}
}

// PlayableCards filters a hand down to the cards playable on the board.
func PlayableCards(hand []Card, b Board) []Card {
	var out []Card
	for _, c := range hand {
		if b.IsPlayable(c) {
			out = append(out, c)
		}
	}
	return out
}
