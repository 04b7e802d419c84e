package domain

const (
	// KnockThreshold is the maximum unpenalized hand total allowed to knock.
	KnockThreshold = 5
	// DeclaredCardPenalty is added per held natural whose identity some wild
	// has impersonated at any point in the round.
	DeclaredCardPenalty = 30
)

// HandPoints sums the point values of all cards currently held.
func HandPoints(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.PointValue()
	}
	return total
}

// AdjustedPoints adds the declared-identity penalty to the raw hand total.
// The declaration log is global: a natural becomes a liability for whoever
// holds it, no matter which player declared the matching identity.
func AdjustedPoints(hand []Card, decls []Declaration) int {
	total := HandPoints(hand)
	for _, c := range hand {
		if c.IsWild() {
			continue
		}
		for _, d := range decls {
			if d.Suit == c.Suit && d.Rank == c.Rank {
				total += DeclaredCardPenalty
				break
			}
		}
	}
	return total
}

// CanKnock reports knock eligibility from the unpenalized hand total.
func CanKnock(hand []Card) bool {
	return HandPoints(hand) <= KnockThreshold
}

// KnockResult is the outcome of resolving a knock.
type KnockResult struct {
	Knocker  int
	Adjusted []int
	Deltas   []int
	Undercut bool
}

// ResolveKnock scores the round and applies the deltas to player scores.
// An undercut (any other player at or below the knocker's adjusted total)
// charges the knocker the sum of every player's adjusted total, the
// knocker's own included; otherwise each player absorbs their own.
func ResolveKnock(players []*Player, knocker int, decls []Declaration) KnockResult {
	res := KnockResult{
		Knocker:  knocker,
		Adjusted: make([]int, len(players)),
		Deltas:   make([]int, len(players)),
	}
	sum := 0
	for i, p := range players {
		res.Adjusted[i] = AdjustedPoints(p.Hand, decls)
		sum += res.Adjusted[i]
	}
	for i := range players {
		if i != knocker && res.Adjusted[i] <= res.Adjusted[knocker] {
			res.Undercut = true
			break
		}
	}
	if res.Undercut {
		res.Deltas[knocker] = sum
	} else {
		copy(res.Deltas, res.Adjusted)
	}
	for i, p := range players {
		p.Score += res.Deltas[i]
	}
	return res
}
