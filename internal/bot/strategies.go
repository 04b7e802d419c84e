package bot

import (
	"fantan/internal/domain"
)

// GreedyBrain sheds points as fast as the rules allow: melds before singles,
// sevens before other plays, wilds only when nothing natural fits. It is
// fully deterministic for a given game state.
type GreedyBrain struct{}

func (b *GreedyBrain) PlanAction(g *domain.Game, seat int) *Action {
	pl := g.PlayerAt(seat)
	if pl == nil || len(pl.Hand) == 0 {
		return nil
	}

	if act := planMeld(pl.Hand); act != nil {
		return act
	}

	// Sevens first: each one opens a suit for later plays.
	for _, c := range pl.Hand {
		if !c.IsWild() && c.Rank == domain.SequenceRank && g.Board.IsPlayable(c) {
			return &Action{Kind: ActionPlay, CardIDs: []string{c.ID}}
		}
	}
	for _, c := range pl.Hand {
		if !c.IsWild() && g.Board.IsPlayable(c) {
			return &Action{Kind: ActionPlay, CardIDs: []string{c.ID}}
		}
	}

	// A wild is worth 30 in hand; dumping it on any open end beats holding it.
	for _, c := range pl.Hand {
		if !c.IsWild() {
			continue
		}
		if decl := wildBoardSpot(g.Board, c.ID); decl != nil {
			return &Action{Kind: ActionPlay, CardIDs: []string{c.ID}, Declaration: decl}
		}
	}
	return nil
}

// ChooseDiscard sheds the most expensive card, taking the first on a tie.
func (b *GreedyBrain) ChooseDiscard(hand []domain.Card) string {
	if len(hand) == 0 {
		return ""
	}
	best := hand[0]
	for _, c := range hand[1:] {
		if c.PointValue() > best.PointValue() {
			best = c
		}
	}
	return best.ID
}

// ConsiderClaim takes a discard only when two naturals of its rank are in
// hand. Spending a wild on a claim trades 30 points for at most 15, so the
// greedy policy never does it.
func (b *GreedyBrain) ConsiderClaim(g *domain.Game, seat int) *ClaimPlan {
	if g.Pending == nil || g.Pending.Card.IsWild() {
		return nil
	}
	pl := g.PlayerAt(seat)
	if pl == nil {
		return nil
	}
	var ids []string
	for _, c := range pl.Hand {
		if !c.IsWild() && c.Rank == g.Pending.Card.Rank {
			ids = append(ids, c.ID)
			if len(ids) == domain.MeldSize-1 {
				return &ClaimPlan{CardIDs: ids}
			}
		}
	}
	return nil
}

// planMeld finds the first rank with three naturals in hand.
func planMeld(hand []domain.Card) *Action {
	byRank := make(map[domain.Rank][]string)
	for _, c := range hand {
		if c.IsWild() {
			continue
		}
		byRank[c.Rank] = append(byRank[c.Rank], c.ID)
		if ids := byRank[c.Rank]; len(ids) == domain.MeldSize {
			return &Action{Kind: ActionMeld, CardIDs: ids}
		}
	}
	return nil
}

// wildBoardSpot scans suits in order and returns the first legal identity
// for the wild, trying the high end before the low end.
func wildBoardSpot(b domain.Board, cardID string) *domain.Declaration {
	for suit := domain.Suit(0); suit < domain.NumSuits; suit++ {
		seq := b[suit]
		if !seq.HasSeven {
			continue
		}
		if b.CanExtend(suit, seq.High+1) {
			return &domain.Declaration{CardID: cardID, Suit: suit, Rank: domain.Rank(seq.High + 1)}
		}
		if b.CanExtend(suit, seq.Low-1) {
			return &domain.Declaration{CardID: cardID, Suit: suit, Rank: domain.Rank(seq.Low - 1)}
		}
	}
	return nil
}
