package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"fantan/internal/domain"
)

// Service contains the match use-cases: it validates each attempted
// transition against the current game state, mutates the state, and emits
// the events the port broadcasts. Rule violations are returned as errors
// with no state change; they are never fatal.
type Service struct {
	rng     *rand.Rand
	ceiling int
}

// NewService constructs a Service with the provided rng (or a time-seeded
// default) and score ceiling (or DefaultScoreCeiling when non-positive).
func NewService(rng *rand.Rand, scoreCeiling int) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if scoreCeiling <= 0 {
		scoreCeiling = DefaultScoreCeiling
	}
	return &Service{rng: rng, ceiling: scoreCeiling}
}

var (
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrTooManyPlayers = errors.New("too many players to start")
	ErrUnknownPlayer  = errors.New("player not found")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrWrongPhase     = errors.New("action not legal in this phase")
	ErrCardNotInHand  = errors.New("card is not in your hand")
	ErrUnplayableCard = errors.New("card does not extend any sequence")
	ErrInvalidMeld    = errors.New("invalid meld")
	ErrCannotKnock    = errors.New("hand points too high to knock")
	ErrNoPendingClaim = errors.New("no discard is open to claim")
	ErrOwnDiscard     = errors.New("cannot claim your own discard")
)

// StartMatch creates a fresh game for the given players and deals round one.
func (s *Service) StartMatch(playerIDs, names []string) (*domain.Game, []Event, error) {
	if len(playerIDs) < MinPlayers {
		return nil, nil, ErrTooFewPlayers
	}
	if len(playerIDs) > MaxPlayers {
		return nil, nil, ErrTooManyPlayers
	}

	players := make([]*domain.Player, len(playerIDs))
	for i, id := range playerIDs {
		name := id
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		players[i] = &domain.Player{ID: id, Name: name}
	}

	g := &domain.Game{
		Players: players,
		Round:   1,
		Winner:  -1,
		Phase:   domain.PhaseAction,
	}
	s.deal(g)
	g.Current = 0

	events := []Event{{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			Round:         g.Round,
			FirstTurnSeat: g.Current,
			DeckRemaining: len(g.Deck),
		},
	}}
	events = append(events, handDealtEvents(g)...)
	return g, events, nil
}

// PlayCard plays one legal single card from the current player's hand to the
// board. A wild requires a declaration naming a legal extension point; the
// declaration is recorded and the board extended under the declared identity.
func (s *Service) PlayCard(g *domain.Game, seat int, cardID string, decl *domain.Declaration) ([]Event, error) {
	if err := requireTurn(g, seat, domain.PhaseAction); err != nil {
		return nil, err
	}
	pl := g.Players[seat]
	card, ok := domain.FindInHand(pl.Hand, cardID)
	if !ok {
		return nil, ErrCardNotInHand
	}
	if !g.Board.IsPlayable(card) {
		return nil, ErrUnplayableCard
	}

	if card.IsWild() {
		if decl == nil {
			return nil, fmt.Errorf("%w: a wild must declare an identity", domain.ErrDeclarationCount)
		}
		if err := g.Board.ValidateBoardDeclaration(card, *decl); err != nil {
			return nil, err
		}
		closeClaimWindow(g)
		g.Declarations = append(g.Declarations, *decl)
		g.Board.Extend(decl.Suit, int(decl.Rank))
	} else {
		if decl != nil {
			return nil, fmt.Errorf("%w: only wilds declare identities", domain.ErrDeclarationCount)
		}
		closeClaimWindow(g)
		g.Board.Extend(card.Suit, card.SortOrder())
	}
	pl.Hand = domain.RemoveFromHand(pl.Hand, card.ID)

	events := []Event{{
		Kind:    EventCardPlayed,
		Payload: CardPlayedPayload{Seat: seat, Card: card, Declaration: decl},
	}}
	if len(pl.Hand) == 0 {
		events = append(events, s.endRound(g, seat)...)
	}
	return events, nil
}

// PlayMeld lays down a 3-of-a-kind from the current player's hand. The group
// leaves the hand permanently and never touches the board sequences.
func (s *Service) PlayMeld(g *domain.Game, seat int, cardIDs []string, decls []domain.Declaration) ([]Event, error) {
	if err := requireTurn(g, seat, domain.PhaseAction); err != nil {
		return nil, err
	}
	pl := g.Players[seat]
	cards, err := cardsFromHand(pl.Hand, cardIDs)
	if err != nil {
		return nil, err
	}
	anchor, err := domain.ValidateMeld(cards, decls)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMeld, err)
	}

	closeClaimWindow(g)
	g.Declarations = append(g.Declarations, decls...)
	pl.Hand = domain.RemoveFromHand(pl.Hand, cardIDs...)
	pl.Melds = append(pl.Melds, cards)

	events := []Event{{
		Kind:    EventMeldPlayed,
		Payload: MeldPlayedPayload{Seat: seat, Cards: cards, Anchor: anchor, Declarations: decls},
	}}
	if len(pl.Hand) == 0 {
		events = append(events, s.endRound(g, seat)...)
	}
	return events, nil
}

// DrawCard moves the current player from action to discard, taking the top
// of the deck when one remains. An empty deck is not an error: the turn
// simply proceeds to discard with no card added.
func (s *Service) DrawCard(g *domain.Game, seat int) ([]Event, error) {
	if err := requireTurn(g, seat, domain.PhaseAction); err != nil {
		return nil, err
	}
	closeClaimWindow(g)
	pl := g.Players[seat]

	var drawn *domain.Card
	if len(g.Deck) > 0 {
		c := g.Deck[0]
		g.Deck = g.Deck[1:]
		pl.Hand = append(pl.Hand, c)
		drawn = &c
	}

	if drawn == nil && len(pl.Hand) == 0 {
		// Nothing to draw and nothing to discard; the round ends on an
		// empty hand.
		return s.endRound(g, seat), nil
	}

	g.Phase = domain.PhaseDiscard
	return []Event{{
		Kind:       EventCardDrawn,
		Payload:    CardDrawnPayload{Seat: seat, Card: drawn, DeckRemaining: len(g.Deck)},
		Recipients: []string{pl.ID},
	}}, nil
}

// DiscardCard sheds exactly one card, opens the claim window on it, and
// passes the turn to the next seat.
func (s *Service) DiscardCard(g *domain.Game, seat int, cardID string) ([]Event, error) {
	if err := requireTurn(g, seat, domain.PhaseDiscard); err != nil {
		return nil, err
	}
	pl := g.Players[seat]
	card, ok := domain.FindInHand(pl.Hand, cardID)
	if !ok {
		return nil, ErrCardNotInHand
	}

	pl.Hand = domain.RemoveFromHand(pl.Hand, card.ID)
	g.DiscardPile = append(g.DiscardPile, card)
	g.Pending = &domain.PendingClaim{Card: card, Discarder: seat}
	g.Current = (seat + 1) % len(g.Players)
	g.Phase = domain.PhaseAction

	return []Event{{
		Kind:    EventCardDiscarded,
		Payload: CardDiscardedPayload{Seat: seat, Card: card, NextSeat: g.Current},
	}}, nil
}

// Knock ends the round immediately. Eligibility uses the unpenalized hand
// total; the declared-identity penalty only bites at scoring time.
func (s *Service) Knock(g *domain.Game, seat int) ([]Event, error) {
	if err := requireTurn(g, seat, domain.PhaseAction); err != nil {
		return nil, err
	}
	if !domain.CanKnock(g.Players[seat].Hand) {
		return nil, ErrCannotKnock
	}
	closeClaimWindow(g)

	events := []Event{{Kind: EventKnocked, Payload: KnockedPayload{Seat: seat}}}
	return append(events, s.endRound(g, seat)...), nil
}

// ClaimDiscard lets any player but the discarder take the pending discard to
// complete a meld with exactly two matching hand cards. On success the turn
// transfers to the claimant in the action phase.
func (s *Service) ClaimDiscard(g *domain.Game, seat int, cardIDs []string, decls []domain.Declaration) ([]Event, error) {
	if g.Pending == nil {
		return nil, ErrNoPendingClaim
	}
	if seat == g.Pending.Discarder {
		return nil, ErrOwnDiscard
	}
	pl := g.PlayerAt(seat)
	if pl == nil {
		return nil, ErrUnknownPlayer
	}
	cards, err := cardsFromHand(pl.Hand, cardIDs)
	if err != nil {
		return nil, err
	}
	anchor, err := domain.ValidateClaim(g.Pending.Card, cards, decls)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMeld, err)
	}

	meld := make([]domain.Card, 0, domain.MeldSize)
	meld = append(meld, g.Pending.Card)
	meld = append(meld, cards...)

	g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	g.Declarations = append(g.Declarations, decls...)
	pl.Hand = domain.RemoveFromHand(pl.Hand, cardIDs...)
	pl.Melds = append(pl.Melds, meld)
	g.Pending = nil
	g.Current = seat
	g.Phase = domain.PhaseAction

	events := []Event{{
		Kind:    EventDiscardClaimed,
		Payload: DiscardClaimedPayload{Seat: seat, Cards: meld, Anchor: anchor, Declarations: decls},
	}}
	if len(pl.Hand) == 0 {
		events = append(events, s.endRound(g, seat)...)
	}
	return events, nil
}

// PassClaim closes the pending claim window. It is idempotent: a timer
// expiry racing a manual pass makes the second call a silent no-op.
func (s *Service) PassClaim(g *domain.Game) ([]Event, error) {
	if g.Pending == nil {
		return nil, nil
	}
	card := g.Pending.Card
	g.Pending = nil
	return []Event{{Kind: EventClaimPassed, Payload: ClaimPassedPayload{Card: card}}}, nil
}

// deal rebuilds deck, hands, board and round-scoped state for the current
// round. Scores and seats survive; melds and declarations do not.
func (s *Service) deal(g *domain.Game) {
	deck := domain.ShuffleDeck(s.rng, domain.NewDeck(len(g.Players)))
	for _, pl := range g.Players {
		pl.Hand = append([]domain.Card{}, deck[:HandSize]...)
		deck = deck[HandSize:]
		domain.SortHand(pl.Hand)
		pl.Melds = nil
	}
	g.Deck = deck
	g.DiscardPile = nil
	g.Board = domain.NewBoard()
	g.Pending = nil
	g.Declarations = nil
}

// endRound scores the knock, then either finishes the game at the ceiling or
// deals the next round with the starting seat rotated by round number.
func (s *Service) endRound(g *domain.Game, knocker int) []Event {
	g.Phase = domain.PhaseRoundOver
	g.Pending = nil

	res := domain.ResolveKnock(g.Players, knocker, g.Declarations)
	scores := make([]int, len(g.Players))
	for i, p := range g.Players {
		scores[i] = p.Score
	}
	events := []Event{{
		Kind: EventRoundEnded,
		Payload: RoundEndedPayload{
			Round:    g.Round,
			Knocker:  knocker,
			Adjusted: res.Adjusted,
			Deltas:   res.Deltas,
			Undercut: res.Undercut,
			Scores:   scores,
		},
	}}

	if s.atCeiling(g) {
		g.Phase = domain.PhaseGameOver
		g.Winner = lowestScoreSeat(g)
		return append(events, Event{
			Kind:    EventMatchEnded,
			Payload: MatchEndedPayload{Winner: g.Winner, Scores: scores},
		})
	}

	g.Round++
	s.deal(g)
	g.Current = (g.Round - 1) % len(g.Players)
	g.Phase = domain.PhaseAction

	events = append(events, Event{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			Round:         g.Round,
			FirstTurnSeat: g.Current,
			DeckRemaining: len(g.Deck),
		},
	})
	return append(events, handDealtEvents(g)...)
}

func (s *Service) atCeiling(g *domain.Game) bool {
	for _, p := range g.Players {
		if p.Score >= s.ceiling {
			return true
		}
	}
	return false
}

// lowestScoreSeat breaks ties by the lowest seat index.
func lowestScoreSeat(g *domain.Game) int {
	winner := 0
	for i, p := range g.Players {
		if p.Score < g.Players[winner].Score {
			winner = i
		}
	}
	return winner
}

func handDealtEvents(g *domain.Game) []Event {
	events := make([]Event, 0, len(g.Players))
	for i, pl := range g.Players {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{PlayerID: pl.ID, Seat: i, Hand: pl.Hand},
			Recipients: []string{pl.ID},
		})
	}
	return events
}

func requireTurn(g *domain.Game, seat int, phase domain.Phase) error {
	if g.PlayerAt(seat) == nil {
		return ErrUnknownPlayer
	}
	if g.Phase != phase {
		return ErrWrongPhase
	}
	if g.Current != seat {
		return ErrNotYourTurn
	}
	return nil
}

// cardsFromHand resolves distinct card IDs against a hand.
func cardsFromHand(hand []domain.Card, ids []string) ([]domain.Card, error) {
	seen := make(map[string]bool, len(ids))
	cards := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, ErrCardNotInHand
		}
		seen[id] = true
		c, ok := domain.FindInHand(hand, id)
		if !ok {
			return nil, ErrCardNotInHand
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// closeClaimWindow implicitly passes any open claim once the next turn's
// first transition lands, so a claim can never yank the turn back mid-play.
func closeClaimWindow(g *domain.Game) {
	g.Pending = nil
}
