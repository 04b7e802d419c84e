package app

import "fantan/internal/domain"

// EventKind identifies emitted domain events for dispatch by the port.
type EventKind string

const (
	EventMatchStarted   EventKind = "match_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventRoundStarted   EventKind = "round_started"
	EventCardPlayed     EventKind = "card_played"
	EventMeldPlayed     EventKind = "meld_played"
	EventCardDrawn      EventKind = "card_drawn"
	EventCardDiscarded  EventKind = "card_discarded"
	EventDiscardClaimed EventKind = "discard_claimed"
	EventClaimPassed    EventKind = "claim_passed"
	EventKnocked        EventKind = "knocked"
	EventRoundEnded     EventKind = "round_ended"
	EventMatchEnded     EventKind = "match_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type MatchStartedPayload struct {
	Round         int `json:"round"`
	FirstTurnSeat int `json:"first_turn_seat"`
	DeckRemaining int `json:"deck_remaining"`
}

type HandDealtPayload struct {
	PlayerID string        `json:"player_id"`
	Seat     int           `json:"seat"`
	Hand     []domain.Card `json:"hand"`
}

type RoundStartedPayload struct {
	Round         int `json:"round"`
	FirstTurnSeat int `json:"first_turn_seat"`
	DeckRemaining int `json:"deck_remaining"`
}

type CardPlayedPayload struct {
	Seat        int                 `json:"seat"`
	Card        domain.Card         `json:"card"`
	Declaration *domain.Declaration `json:"declaration,omitempty"`
}

type MeldPlayedPayload struct {
	Seat         int                  `json:"seat"`
	Cards        []domain.Card        `json:"cards"`
	Anchor       domain.Rank          `json:"anchor"`
	Declarations []domain.Declaration `json:"declarations,omitempty"`
}

type CardDrawnPayload struct {
	Seat          int          `json:"seat"`
	Card          *domain.Card `json:"card"` // nil when the deck was exhausted
	DeckRemaining int          `json:"deck_remaining"`
}

type CardDiscardedPayload struct {
	Seat     int         `json:"seat"`
	Card     domain.Card `json:"card"`
	NextSeat int         `json:"next_seat"`
}

type DiscardClaimedPayload struct {
	Seat         int                  `json:"seat"`
	Cards        []domain.Card        `json:"cards"`
	Anchor       domain.Rank          `json:"anchor"`
	Declarations []domain.Declaration `json:"declarations,omitempty"`
}

type ClaimPassedPayload struct {
	Card domain.Card `json:"card"`
}

type KnockedPayload struct {
	Seat int `json:"seat"`
}

type RoundEndedPayload struct {
	Round    int   `json:"round"`
	Knocker  int   `json:"knocker"`
	Adjusted []int `json:"adjusted"`
	Deltas   []int `json:"deltas"`
	Undercut bool  `json:"undercut"`
	Scores   []int `json:"scores"`
}

type MatchEndedPayload struct {
	Winner int   `json:"winner"`
	Scores []int `json:"scores"`
}
