package bot

import (
	"fantan/internal/app"
	"fantan/internal/domain"
)

// Execute runs one full bot turn against the service: every play and meld
// the brain wants, then a knock when eligible, otherwise a draw and discard.
// It stops early if an action empties the hand and the round rolls over.
func Execute(svc *app.Service, g *domain.Game, seat int, brain Brain) ([]app.Event, error) {
	var events []app.Event

	// Every action sheds at least one card, so the starting hand size bounds
	// the loop even against a buggy strategy.
	limit := len(g.Players[seat].Hand)
	for i := 0; i < limit; i++ {
		if g.Phase != domain.PhaseAction || g.Current != seat {
			return events, nil
		}
		act := brain.PlanAction(g, seat)
		if act == nil {
			break
		}

		var (
			evs []app.Event
			err error
		)
		switch act.Kind {
		case ActionMeld:
			evs, err = svc.PlayMeld(g, seat, act.CardIDs, act.Declarations)
		default:
			evs, err = svc.PlayCard(g, seat, act.CardIDs[0], act.Declaration)
		}
		if err != nil {
			return events, err
		}
		events = append(events, evs...)
	}

	if g.Phase != domain.PhaseAction || g.Current != seat {
		return events, nil
	}

	if domain.CanKnock(g.Players[seat].Hand) {
		evs, err := svc.Knock(g, seat)
		if err != nil {
			return events, err
		}
		return append(events, evs...), nil
	}

	evs, err := svc.DrawCard(g, seat)
	if err != nil {
		return events, err
	}
	events = append(events, evs...)
	if g.Phase != domain.PhaseDiscard || g.Current != seat {
		return events, nil
	}

	evs, err = svc.DiscardCard(g, seat, brain.ChooseDiscard(g.Players[seat].Hand))
	if err != nil {
		return events, err
	}
	return append(events, evs...), nil
}
