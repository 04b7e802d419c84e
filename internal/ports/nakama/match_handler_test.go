package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"fantan/internal/app"
	"fantan/internal/bot"
	"fantan/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy
// the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	opCodes        []int64
	lastOpCode     int64
	lastData       []byte
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.opCodes = append(md.opCodes, opCode)
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

func (md *mockDispatcher) sawOpCode(op int64) bool {
	for _, code := range md.opCodes {
		if code == op {
			return true
		}
	}
	return false
}

func TestFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{"FirstHumanAfterBot", []string{bot1, "user-1", "", ""}, 1},
		{"AllBots", []string{bot1, bot2, "", ""}, -1},
		{"AllEmpty", []string{"", "", "", ""}, -1},
		{"HumanAtZero", []string{"user-1", bot1, "user-2", ""}, 0},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := firstHumanSeat(test.seats); got != test.want {
				t.Fatalf("firstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestLabelString(t *testing.T) {
	handler := &matchHandler{}
	state := &MatchState{Seats: [app.MaxPlayers]string{"user-1"}}

	var label matchLabel
	if err := json.Unmarshal([]byte(handler.labelString(state, noopLogger{})), &label); err != nil {
		t.Fatalf("label is not valid JSON: %v", err)
	}
	if label.Open != app.MaxPlayers-1 || label.Game != MatchNameFanTan || label.Phase != "lobby" {
		t.Fatalf("label = %+v", label)
	}

	state.Game = &domain.Game{Phase: domain.PhaseAction}
	if err := json.Unmarshal([]byte(handler.labelString(state, noopLogger{})), &label); err != nil {
		t.Fatalf("label is not valid JSON: %v", err)
	}
	if label.Phase != "action" {
		t.Fatalf("in-game phase = %q, want action", label.Phase)
	}
}

func TestProcessBotsAutoFillsSoloLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Seats:         [app.MaxPlayers]string{"user-1"},
		Presences:     make(map[string]runtime.Presence),
		Bots:          make(map[string]*bot.Agent),
		BotsEnabled:   true,
		AutoFillDelay: 2,
		SoloSinceTick: 8,
		Tick:          10,
	}

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if bot.IsBot(seat) {
			botCount++
		}
	}
	if botCount != app.MaxPlayers-1 {
		t.Fatalf("bots seated = %d, want %d", botCount, app.MaxPlayers-1)
	}
	if state.SoloSinceTick != 0 {
		t.Fatalf("auto-fill timer not reset, got %d", state.SoloSinceTick)
	}
	if len(state.Bots) != botCount {
		t.Fatalf("agents created = %d, want %d", len(state.Bots), botCount)
	}
	if dispatcher.broadcastCount == 0 || dispatcher.labelUpdates == 0 {
		t.Fatal("expected a snapshot broadcast and label update after auto-fill")
	}
}

func TestProcessBotsWaitsThenActs(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}

	botID := bot.GetBotIdentity(1).UserID
	brain, err := bot.NewBrain("")
	if err != nil {
		t.Fatal(err)
	}
	game := &domain.Game{
		Players: []*domain.Player{
			{ID: "user-1", Hand: []domain.Card{{ID: "ct", Suit: domain.Clubs, Rank: domain.Ten}}},
			{ID: botID, Hand: []domain.Card{{ID: "h4", Suit: domain.Hearts, Rank: domain.Four}}},
		},
		Current: 1,
		Phase:   domain.PhaseAction,
		Board:   domain.NewBoard(),
		Round:   1,
		Winner:  -1,
	}
	state := &MatchState{
		Seats:       [app.MaxPlayers]string{"user-1", botID},
		Presences:   make(map[string]runtime.Presence),
		App:         app.NewService(nil, 0),
		Game:        game,
		Bots:        map[string]*bot.Agent{botID: {ID: botID, Strategy: brain}},
		BotsEnabled: true,
		BotMinDelay: 1,
		BotMaxDelay: 1,
		Tick:        10,
	}

	// First pass only schedules the delayed action.
	handler.processBots(context.Background(), state, dispatcher, noopLogger{})
	if state.BotWaitUntil != 11 {
		t.Fatalf("BotWaitUntil = %d, want 11", state.BotWaitUntil)
	}
	if dispatcher.broadcastCount != 0 {
		t.Fatal("bot must not act before its delay elapses")
	}

	state.Tick = 11
	handler.processBots(context.Background(), state, dispatcher, noopLogger{})
	if state.BotWaitUntil != 0 {
		t.Fatalf("BotWaitUntil = %d, want reset", state.BotWaitUntil)
	}
	// A 4-point hand with no play available knocks out the round.
	if !dispatcher.sawOpCode(OpKnocked) || !dispatcher.sawOpCode(OpRoundEnded) {
		t.Fatalf("opcodes = %v, want knock and round end", dispatcher.opCodes)
	}
	if game.Players[1].Score != 4 || game.Players[0].Score != 10 {
		t.Fatalf("scores = %d/%d, want 10/4", game.Players[0].Score, game.Players[1].Score)
	}
}

func TestTickClaimWindowPassesAtDeadline(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	game := &domain.Game{
		Players: []*domain.Player{
			{ID: "user-1"},
			{ID: "user-2"},
		},
		Current: 1,
		Phase:   domain.PhaseAction,
		Board:   domain.NewBoard(),
		Round:   1,
		Winner:  -1,
		Pending: &domain.PendingClaim{
			Card:      domain.Card{ID: "d5", Suit: domain.Diamonds, Rank: domain.Five},
			Discarder: 0,
		},
	}
	state := &MatchState{
		Seats:       [app.MaxPlayers]string{"user-1", "user-2"},
		Presences:   make(map[string]runtime.Presence),
		App:         app.NewService(nil, 0),
		Game:        game,
		ClaimWindow: 3,
		Tick:        20,
	}

	handler.tickClaimWindow(context.Background(), state, dispatcher, noopLogger{})
	if state.ClaimDeadline != 23 {
		t.Fatalf("ClaimDeadline = %d, want 23", state.ClaimDeadline)
	}

	state.Tick = 22
	handler.tickClaimWindow(context.Background(), state, dispatcher, noopLogger{})
	if game.Pending == nil {
		t.Fatal("window must stay open before the deadline")
	}

	state.Tick = 23
	handler.tickClaimWindow(context.Background(), state, dispatcher, noopLogger{})
	if game.Pending != nil {
		t.Fatal("window must close at the deadline")
	}
	if state.ClaimDeadline != 0 {
		t.Fatalf("ClaimDeadline = %d, want reset", state.ClaimDeadline)
	}
	if !dispatcher.sawOpCode(OpClaimPassed) {
		t.Fatalf("opcodes = %v, want claim_passed", dispatcher.opCodes)
	}
}

func TestTickClaimWindowLetsBotClaim(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}

	botID := bot.GetBotIdentity(2).UserID
	brain, err := bot.NewBrain("")
	if err != nil {
		t.Fatal(err)
	}
	game := &domain.Game{
		Players: []*domain.Player{
			{ID: "user-1"},
			{ID: botID, Hand: []domain.Card{
				{ID: "c5", Suit: domain.Clubs, Rank: domain.Five},
				{ID: "s5", Suit: domain.Spades, Rank: domain.Five},
				{ID: "h9", Suit: domain.Hearts, Rank: domain.Nine},
			}},
		},
		Current: 1,
		Phase:   domain.PhaseAction,
		Board:   domain.NewBoard(),
		Round:   1,
		Winner:  -1,
		Pending: &domain.PendingClaim{
			Card:      domain.Card{ID: "d5", Suit: domain.Diamonds, Rank: domain.Five},
			Discarder: 0,
		},
		DiscardPile: []domain.Card{{ID: "d5", Suit: domain.Diamonds, Rank: domain.Five}},
	}
	state := &MatchState{
		Seats:         [app.MaxPlayers]string{"user-1", botID},
		Presences:     make(map[string]runtime.Presence),
		App:           app.NewService(nil, 0),
		Game:          game,
		Bots:          map[string]*bot.Agent{botID: {ID: botID, Strategy: brain}},
		BotsEnabled:   true,
		ClaimWindow:   1,
		ClaimDeadline: 5,
		Tick:          5,
	}

	handler.tickClaimWindow(context.Background(), state, dispatcher, noopLogger{})

	if game.Pending != nil {
		t.Fatal("claim window should be consumed by the bot claim")
	}
	if !dispatcher.sawOpCode(OpDiscardClaimed) {
		t.Fatalf("opcodes = %v, want discard_claimed", dispatcher.opCodes)
	}
	if len(game.Players[1].Melds) != 1 {
		t.Fatalf("bot melds = %v, want the claimed set", game.Players[1].Melds)
	}
	if game.Current != 1 {
		t.Fatalf("current = %d, want the claimant on turn", game.Current)
	}
}

func TestBroadcastEventSuppressesUndeliverablePrivateEvents(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
	}

	// A private hand for a bot with no presence must not reach the table.
	handler.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, app.Event{
		Kind:       app.EventHandDealt,
		Payload:    app.HandDealtPayload{PlayerID: "bot-0", Seat: 0},
		Recipients: []string{"bot-0"},
	})
	if dispatcher.broadcastCount != 0 {
		t.Fatal("undeliverable private event must be dropped, not broadcast")
	}

	handler.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, app.Event{
		Kind:    app.EventKnocked,
		Payload: app.KnockedPayload{Seat: 2},
	})
	if dispatcher.broadcastCount != 1 || dispatcher.lastOpCode != OpKnocked {
		t.Fatalf("broadcasts/op = %d/%d, want 1/%d", dispatcher.broadcastCount, dispatcher.lastOpCode, OpKnocked)
	}
}
