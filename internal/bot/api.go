package bot

import (
	"fantan/internal/domain"
)

// ActionKind selects which use-case a planned action maps to.
type ActionKind int

const (
	// ActionPlay places a single card on the board.
	ActionPlay ActionKind = iota
	// ActionMeld lays down a 3-of-a-kind.
	ActionMeld
)

// Action is one board play or meld the brain wants to make this turn.
type Action struct {
	Kind         ActionKind
	CardIDs      []string
	Declaration  *domain.Declaration  // wild identity for a single play
	Declarations []domain.Declaration // wild identities inside a meld
}

// ClaimPlan names the two hand cards a brain commits to a pending discard.
type ClaimPlan struct {
	CardIDs []string
}

// Brain is the decision surface all bot strategies implement. PlanAction is
// called repeatedly within one turn until it returns nil; ChooseDiscard runs
// after the draw; ConsiderClaim is consulted whenever an opponent discards.
type Brain interface {
	PlanAction(g *domain.Game, seat int) *Action
	ChooseDiscard(hand []domain.Card) string
	ConsiderClaim(g *domain.Game, seat int) *ClaimPlan
}
