package nakama

import (
	"fantan/internal/domain"
)

// Client request payloads, all JSON.

type DeclarationPayload struct {
	CardID string `json:"card_id"`
	Suit   int    `json:"suit"`
	Rank   int    `json:"rank"`
}

func (d *DeclarationPayload) toDomain() domain.Declaration {
	return domain.Declaration{
		CardID: d.CardID,
		Suit:   domain.Suit(d.Suit),
		Rank:   domain.Rank(d.Rank),
	}
}

func toDomainDeclarations(payloads []DeclarationPayload) []domain.Declaration {
	if len(payloads) == 0 {
		return nil
	}
	decls := make([]domain.Declaration, len(payloads))
	for i := range payloads {
		decls[i] = payloads[i].toDomain()
	}
	return decls
}

type PlayCardRequest struct {
	CardID      string              `json:"card_id"`
	Declaration *DeclarationPayload `json:"declaration,omitempty"`
}

type PlayMeldRequest struct {
	CardIDs      []string             `json:"card_ids"`
	Declarations []DeclarationPayload `json:"declarations,omitempty"`
}

type DiscardCardRequest struct {
	CardID string `json:"card_id"`
}

type ClaimDiscardRequest struct {
	CardIDs      []string             `json:"card_ids"`
	Declarations []DeclarationPayload `json:"declarations,omitempty"`
}

// Server payloads.

type ErrorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type AdviceMessage struct {
	Advice string `json:"advice"`
}

type SeatState struct {
	UserID         string `json:"user_id"`
	Seat           int    `json:"seat"`
	DisplayName    string `json:"display_name"`
	IsOwner        bool   `json:"is_owner"`
	IsBot          bool   `json:"is_bot"`
	CardsRemaining int    `json:"cards_remaining"`
	Score          int    `json:"score"`
}

type SequenceState struct {
	Suit   int  `json:"suit"`
	Low    int  `json:"low"`
	High   int  `json:"high"`
	IsOpen bool `json:"is_open"`
}

// MatchStateMessage is the public table snapshot sent on joins and whenever
// seating changes. Hands are never included; they travel in private events.
type MatchStateMessage struct {
	Seats       []SeatState     `json:"seats"`
	OwnerSeat   int             `json:"owner_seat"`
	Phase       string          `json:"phase"`
	Round       int             `json:"round"`
	CurrentSeat int             `json:"current_seat"`
	Board       []SequenceState `json:"board,omitempty"`
	TopDiscard  *domain.Card    `json:"top_discard,omitempty"`
}

// matchLabel is serialized into the Nakama match listing.
type matchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}
