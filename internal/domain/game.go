package domain

// Phase represents the lifecycle stage of a match.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhaseAction is the current player's main phase: single plays, melds,
	// then a draw or a knock.
	PhaseAction Phase = "action"
	// PhaseDiscard follows a draw; the player sheds exactly one card.
	PhaseDiscard Phase = "discard"
	// PhaseRoundOver is transient while a knock is being scored.
	PhaseRoundOver Phase = "round_over"
	// PhaseGameOver is terminal once a score reaches the ceiling.
	PhaseGameOver Phase = "game_over"
)

// Player holds the domain state for one participant. Hand is owned
// exclusively by the player; Melds are public and never re-enter play;
// Score only ever grows and persists across rounds.
type Player struct {
	ID    string
	Name  string
	Hand  []Card
	Melds [][]Card
	Score int
}

// PendingClaim is the open window on the most recent discard.
type PendingClaim struct {
	Card      Card
	Discarder int
}

// Game is the authoritative state for one match. Exactly one is live at a
// time; every accepted transition mutates it through the app service.
type Game struct {
	Players      []*Player
	Current      int
	Deck         []Card
	DiscardPile  []Card // top is the last element
	Board        Board
	Phase        Phase
	Round        int
	Winner       int // player index; -1 until game over
	Pending      *PendingClaim
	Declarations []Declaration
}

// PlayerAt returns the player at the given seat, or nil.
func (g *Game) PlayerAt(seat int) *Player {
	if seat < 0 || seat >= len(g.Players) {
		return nil
	}
	return g.Players[seat]
}

// SeatOf returns the seat index for a player ID, or -1.
func (g *Game) SeatOf(playerID string) int {
	for i, p := range g.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// TopDiscard returns the most recent discard, if any.
func (g *Game) TopDiscard() (Card, bool) {
	if len(g.DiscardPile) == 0 {
		return Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// FindInHand locates a card by ID.
func FindInHand(hand []Card, cardID string) (Card, bool) {
	for _, c := range hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// RemoveFromHand returns the hand with the cards matching the given IDs
// removed. Each ID removes at most one card.
func RemoveFromHand(hand []Card, ids ...string) []Card {
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if remove[c.ID] {
			delete(remove, c.ID)
			continue
		}
		out = append(out, c)
	}
	return out
}
