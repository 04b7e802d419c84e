package domain

import (
	"errors"
	"testing"
)

func natural(id string, s Suit, r Rank) Card { return Card{ID: id, Suit: s, Rank: r} }
func joker(id string) Card                   { return Card{ID: id, Suit: SuitWild, Rank: RankWild} }

func TestValidateMeld(t *testing.T) {
	tests := []struct {
		name       string
		cards      []Card
		decls      []Declaration
		wantAnchor Rank
		wantErr    error
	}{
		{
			name:       "ThreeNaturals",
			cards:      []Card{natural("a", Hearts, Nine), natural("b", Clubs, Nine), natural("c", Spades, Nine)},
			wantAnchor: Nine,
		},
		{
			name:  "WrongSize",
			cards: []Card{natural("a", Hearts, Nine), natural("b", Clubs, Nine)},

			wantErr: ErrMeldSize,
		},
		{
			name:    "MixedRanks",
			cards:   []Card{natural("a", Hearts, Nine), natural("b", Clubs, Ten), natural("c", Spades, Nine)},
			wantErr: ErrMeldRankMismatch,
		},
		{
			name:       "OneWildSubstitute",
			cards:      []Card{natural("a", Hearts, Nine), natural("b", Clubs, Nine), joker("w")},
			decls:      []Declaration{{CardID: "w", Suit: Spades, Rank: Nine}},
			wantAnchor: Nine,
		},
		{
			name:    "SevenAnchorRejectsWilds",
			cards:   []Card{natural("a", Hearts, Seven), natural("b", Clubs, Seven), joker("w")},
			decls:   []Declaration{{CardID: "w", Suit: Spades, Rank: Seven}},
			wantErr: ErrSevenMeldNoWilds,
		},
		{
			name:       "ThreeNaturalSevens",
			cards:      []Card{natural("a", Hearts, Seven), natural("b", Clubs, Seven), natural("c", Spades, Seven)},
			wantAnchor: Seven,
		},
		{
			name:  "AllWildNominatesAnchor",
			cards: []Card{joker("w1"), joker("w2"), joker("w3")},
			decls: []Declaration{
				{CardID: "w1", Suit: Hearts, Rank: King},
				{CardID: "w2", Suit: Clubs, Rank: King},
				{CardID: "w3", Suit: Spades, Rank: King},
			},
			wantAnchor: King,
		},
		{
			name:    "AllWildWithoutDeclarations",
			cards:   []Card{joker("w1"), joker("w2"), joker("w3")},
			wantErr: ErrNoAnchorRank,
		},
		{
			name:  "AllWildNominatesSeven",
			cards: []Card{joker("w1"), joker("w2"), joker("w3")},
			decls: []Declaration{
				{CardID: "w1", Suit: Hearts, Rank: Seven},
				{CardID: "w2", Suit: Clubs, Rank: Seven},
				{CardID: "w3", Suit: Spades, Rank: Seven},
			},
			wantErr: ErrDeclarationRank,
		},
		{
			name:    "WildMissingDeclaration",
			cards:   []Card{natural("a", Hearts, Nine), natural("b", Clubs, Nine), joker("w")},
			wantErr: ErrDeclarationCount,
		},
		{
			name:  "WildDeclaresWrongRank",
			cards: []Card{natural("a", Hearts, Nine), natural("b", Clubs, Nine), joker("w")},
			decls: []Declaration{{CardID: "w", Suit: Spades, Rank: Ten}},

			wantErr: ErrDeclarationAnchor,
		},
		{
			name:  "WildDuplicatesNaturalSuit",
			cards: []Card{natural("a", Hearts, Nine), natural("b", Clubs, Nine), joker("w")},
			decls: []Declaration{{CardID: "w", Suit: Hearts, Rank: Nine}},

			wantErr: ErrDeclarationSuitTaken,
		},
		{
			name:  "TwoWildsShareDeclaredSuit",
			cards: []Card{natural("a", Hearts, Nine), joker("w1"), joker("w2")},
			decls: []Declaration{
				{CardID: "w1", Suit: Spades, Rank: Nine},
				{CardID: "w2", Suit: Spades, Rank: Nine},
			},
			wantErr: ErrDeclarationSuitDup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor, err := ValidateMeld(tt.cards, tt.decls)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if anchor != tt.wantAnchor {
				t.Fatalf("anchor = %v, want %v", anchor, tt.wantAnchor)
			}
		})
	}
}

func TestValidateClaim(t *testing.T) {
	tests := []struct {
		name    string
		discard Card
		hand    []Card
		decls   []Declaration
		wantErr error
	}{
		{
			name:    "TwoNaturals",
			discard: natural("d", Hearts, Four),
			hand:    []Card{natural("a", Clubs, Four), natural("b", Spades, Four)},
		},
		{
			name:    "NaturalPlusWild",
			discard: natural("d", Hearts, Four),
			hand:    []Card{natural("a", Clubs, Four), joker("w")},
			decls:   []Declaration{{CardID: "w", Suit: Spades, Rank: Four}},
		},
		{
			name:    "WrongHandCount",
			discard: natural("d", Hearts, Four),
			hand:    []Card{natural("a", Clubs, Four)},
			wantErr: ErrClaimSize,
		},
		{
			name:    "SevenWithWildAlwaysRejected",
			discard: natural("d", Hearts, Seven),
			hand:    []Card{natural("a", Clubs, Seven), joker("w")},
			decls:   []Declaration{{CardID: "w", Suit: Spades, Rank: Seven}},
			wantErr: ErrClaimSevenWild,
		},
		{
			name:    "SevenWithTwoNaturals",
			discard: natural("d", Hearts, Seven),
			hand:    []Card{natural("a", Clubs, Seven), natural("b", Spades, Seven)},
		},
		{
			name:    "RankMismatch",
			discard: natural("d", Hearts, Four),
			hand:    []Card{natural("a", Clubs, Five), natural("b", Spades, Four)},
			wantErr: ErrMeldRankMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateClaim(tt.discard, tt.hand, tt.decls)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateBoardDeclaration(t *testing.T) {
	b := NewBoard()
	b.Extend(Hearts, 7)
	w := joker("w")

	tests := []struct {
		name    string
		decl    Declaration
		wantErr error
	}{
		{"LegalHighExtension", Declaration{CardID: "w", Suit: Hearts, Rank: Eight}, nil},
		{"LegalLowExtension", Declaration{CardID: "w", Suit: Hearts, Rank: Six}, nil},
		{"Gap", Declaration{CardID: "w", Suit: Hearts, Rank: Ten}, ErrDeclarationNotLegal},
		{"ClosedSuit", Declaration{CardID: "w", Suit: Spades, Rank: Eight}, ErrDeclarationNotLegal},
		{"SevenNeverDeclared", Declaration{CardID: "w", Suit: Spades, Rank: Seven}, ErrDeclarationRank},
		{"WrongCardID", Declaration{CardID: "x", Suit: Hearts, Rank: Eight}, ErrDeclarationTarget},
		{"WildSuit", Declaration{CardID: "w", Suit: SuitWild, Rank: Eight}, ErrDeclarationSuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.ValidateBoardDeclaration(w, tt.decl)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
