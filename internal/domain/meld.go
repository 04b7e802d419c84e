package domain

import "errors"

// MeldSize is the fixed size of a meld group.
const MeldSize = 3

var (
	ErrMeldSize             = errors.New("a meld is exactly three cards")
	ErrMeldRankMismatch     = errors.New("meld cards must share one rank")
	ErrSevenMeldNoWilds     = errors.New("wilds can never stand in for a seven")
	ErrNoAnchorRank         = errors.New("an all-wild meld must nominate an anchor rank")
	ErrClaimSize            = errors.New("a claim uses exactly two cards from hand")
	ErrClaimSevenWild       = errors.New("a discarded seven can never be claimed with a wild")
	ErrDeclarationCount     = errors.New("exactly one declared identity per wild is required")
	ErrDeclarationTarget    = errors.New("declared identity does not match the wild being played")
	ErrDeclarationRank      = errors.New("declared rank must be a standard rank other than the seven")
	ErrDeclarationAnchor    = errors.New("a wild in a meld must declare the anchor rank")
	ErrDeclarationSuit      = errors.New("declared suit must be one of the four board suits")
	ErrDeclarationSuitDup   = errors.New("two wilds in one group declared the same suit")
	ErrDeclarationSuitTaken = errors.New("a wild may not declare a suit a natural already covers")
	ErrDeclarationNotLegal  = errors.New("declared identity is not a legal extension of any sequence")
)

// ValidateMeld checks a 3-card group and the declared identities of its
// wilds, returning the anchor rank. Naturals must share one rank; a seven
// anchor permits no wilds at all; an all-wild group takes its anchor from
// the declarations (any standard rank except the seven).
func ValidateMeld(cards []Card, decls []Declaration) (Rank, error) {
	if len(cards) != MeldSize {
		return 0, ErrMeldSize
	}
	var anchor Rank
	wilds := 0
	for _, c := range cards {
		if c.IsWild() {
			wilds++
			continue
		}
		if anchor == 0 {
			anchor = c.Rank
		} else if c.Rank != anchor {
			return 0, ErrMeldRankMismatch
		}
	}
	if anchor == SequenceRank && wilds > 0 {
		return 0, ErrSevenMeldNoWilds
	}
	if anchor == 0 {
		// No natural anchor; the nominated rank rides on the declarations.
		if len(decls) == 0 {
			return 0, ErrNoAnchorRank
		}
		anchor = decls[0].Rank
	}
	if err := ValidateDeclarations(cards, decls, anchor); err != nil {
		return 0, err
	}
	return anchor, nil
}

// ValidateDeclarations jointly checks the declared identities for every wild
// in one group: one declaration per wild, declared rank equal to the anchor
// and never the seven, declared suits distinct among the wilds and disjoint
// from the suits the group's naturals already contribute.
func ValidateDeclarations(group []Card, decls []Declaration, anchor Rank) error {
	if anchor == SequenceRank || anchor < Ace || anchor > King {
		return ErrDeclarationRank
	}

	byID := make(map[string]Declaration, len(decls))
	for _, d := range decls {
		if _, dup := byID[d.CardID]; dup {
			return ErrDeclarationCount
		}
		byID[d.CardID] = d
	}

	naturalSuits := make(map[Suit]bool, NumSuits)
	wilds := 0
	for _, c := range group {
		if c.IsWild() {
			wilds++
		} else {
			naturalSuits[c.Suit] = true
		}
	}
	if wilds != len(decls) {
		return ErrDeclarationCount
	}

	declaredSuits := make(map[Suit]bool, len(decls))
	for _, c := range group {
		if !c.IsWild() {
			continue
		}
		d, ok := byID[c.ID]
		if !ok {
			return ErrDeclarationTarget
		}
		if d.Rank == SequenceRank || d.Rank < Ace || d.Rank > King {
			return ErrDeclarationRank
		}
		if d.Rank != anchor {
			return ErrDeclarationAnchor
		}
		if d.Suit < 0 || d.Suit >= NumSuits {
			return ErrDeclarationSuit
		}
		if declaredSuits[d.Suit] {
			return ErrDeclarationSuitDup
		}
		if naturalSuits[d.Suit] {
			return ErrDeclarationSuitTaken
		}
		declaredSuits[d.Suit] = true
	}
	return nil
}

// ValidateClaim checks a pong: exactly two hand cards completing a meld with
// the discarded card. A discarded seven can only ever be claimed with two
// natural sevens.
func ValidateClaim(discard Card, handCards []Card, decls []Declaration) (Rank, error) {
	if len(handCards) != MeldSize-1 {
		return 0, ErrClaimSize
	}
	if discard.Rank == SequenceRank {
		for _, c := range handCards {
			if c.IsWild() {
				return 0, ErrClaimSevenWild
			}
		}
	}
	group := make([]Card, 0, MeldSize)
	group = append(group, discard)
	group = append(group, handCards...)
	return ValidateMeld(group, decls)
}

// ValidateBoardDeclaration checks the declared identity for a single wild
// played directly to the board: the declaration must name the wild itself
// and describe a card that would pass the board's legality check.
func (b Board) ValidateBoardDeclaration(c Card, d Declaration) error {
	if d.CardID != c.ID {
		return ErrDeclarationTarget
	}
	if d.Rank == SequenceRank || d.Rank < Ace || d.Rank > King {
		return ErrDeclarationRank
	}
	if d.Suit < 0 || d.Suit >= NumSuits {
		return ErrDeclarationSuit
	}
	if !b.CanExtend(d.Suit, int(d.Rank)) {
		return ErrDeclarationNotLegal
	}
	return nil
}
