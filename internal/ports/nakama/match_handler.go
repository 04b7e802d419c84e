package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"fantan/internal/advisory"
	"fantan/internal/app"
	"fantan/internal/bot"
	"fantan/internal/config"
	"fantan/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const adviceTimeout = 3 * time.Second

// MatchState holds the authoritative runtime state for the match handler.
type MatchState struct {
	Seats          [app.MaxPlayers]string      `json:"seats"` // user IDs, empty string means open
	OwnerSeat      int                         `json:"owner_seat"`
	Tick           int64                       `json:"tick"`
	Presences      map[string]runtime.Presence `json:"-"`
	App            *app.Service                `json:"-"`
	Game           *domain.Game                `json:"-"`
	Advisor        *advisory.Client            `json:"-"`
	Bots           map[string]*bot.Agent       `json:"-"`
	BotsEnabled    bool                        `json:"bots_enabled"`
	BotMinDelay    int                         `json:"bot_min_delay"`
	BotMaxDelay    int                         `json:"bot_max_delay"`
	AutoFillDelay  int                         `json:"bot_auto_fill_delay"`
	BotWaitUntil   int64                       `json:"bot_wait_until"`
	SoloSinceTick  int64                       `json:"solo_since_tick"`
	ClaimWindow    int                         `json:"claim_window"`
	ClaimDeadline  int64                       `json:"claim_deadline"` // tick; 0 when no window is open
}

func (ms *MatchState) openSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) occupiedSeatCount() int {
	return len(ms.Seats) - ms.openSeatCount()
}

func (ms *MatchState) humanCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !bot.IsBot(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

func firstHumanSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" && !bot.IsBot(userID) {
			return i
		}
	}
	return -1
}

type matchHandler struct{}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: initializing fantan match.")

	state := &MatchState{
		Tick:        time.Now().Unix(),
		Presences:   make(map[string]runtime.Presence),
		App:         app.NewService(nil, config.GetScoreCeiling()),
		Advisor:     advisoryClient,
		Bots:        make(map[string]*bot.Agent),
		OwnerSeat:   -1,
		ClaimWindow: config.GetClaimWindowSeconds(),
	}
	state.BotMinDelay, state.BotMaxDelay = config.GetBotDelaySeconds()
	state.AutoFillDelay = config.GetBotAutoFillDelaySeconds()

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["fantan_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["fantan_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["fantan_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= state.BotMinDelay {
			state.BotMaxDelay = i
		}
	}

	tickRate := 1
	return state, tickRate, mh.labelString(state, logger)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.openSeatCount() <= 0 {
		// A pre-game bot seat can still be reclaimed by a human.
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if bot.IsBot(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "match full"
		}
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}
		if !assigned && matchState.Game == nil {
			for i, seatUserID := range matchState.Seats {
				if bot.IsBot(seatUserID) {
					logger.Info("MatchJoin: replacing bot %s with human %s in seat %d", seatUserID, p.GetUserId(), i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: user %s joined but no seat was available.", p.GetUserId())
		}
	}

	if matchState.OwnerSeat < 0 || !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = firstHumanSeat(matchState.Seats[:])
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userID := seats[seatIndex]
	return userID != "" && !bot.IsBot(userID)
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		if seat := matchState.seatOf(p.GetUserId()); seat >= 0 {
			// Mid-game the seat stays reserved so the player can reconnect;
			// in the lobby it opens up again.
			if matchState.Game == nil {
				matchState.Seats[seat] = ""
			}
			logger.Debug("MatchLeave: user %s left seat %d.", p.GetUserId(), seat)
		}
	}

	matchState.OwnerSeat = firstHumanSeat(matchState.Seats[:])

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: terminating match with no connected humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpPlayMeld:
			mh.handlePlayMeld(ctx, matchState, dispatcher, logger, msg)
		case OpDrawCard:
			mh.handleDrawCard(ctx, matchState, dispatcher, logger, msg)
		case OpDiscardCard:
			mh.handleDiscardCard(ctx, matchState, dispatcher, logger, msg)
		case OpKnock:
			mh.handleKnock(ctx, matchState, dispatcher, logger, msg)
		case OpClaimDiscard:
			mh.handleClaimDiscard(ctx, matchState, dispatcher, logger, msg)
		case OpPassClaim:
			mh.handlePassClaim(ctx, matchState, dispatcher, logger, msg)
		case OpRequestAdvice:
			mh.handleRequestAdvice(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: unknown opcode %d", msg.GetOpCode())
		}
	}

	mh.tickClaimWindow(ctx, matchState, dispatcher, logger)
	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// tickClaimWindow keeps the pending-discard timer. Humans can claim any tick
// before the deadline; at the deadline bots get one chance in seat order and
// then the window is passed.
func (mh *matchHandler) tickClaimWindow(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.Pending == nil {
		state.ClaimDeadline = 0
		return
	}
	if state.ClaimDeadline == 0 {
		state.ClaimDeadline = state.Tick + int64(state.ClaimWindow)
		return
	}
	if state.Tick < state.ClaimDeadline {
		return
	}
	state.ClaimDeadline = 0

	if state.BotsEnabled {
		discarder := state.Game.Pending.Discarder
		for seat, pl := range state.Game.Players {
			userID := pl.ID
			if seat == discarder || !bot.IsBot(userID) {
				continue
			}
			agent, exists := state.Bots[userID]
			if !exists {
				continue
			}
			plan := agent.Strategy.ConsiderClaim(state.Game, seat)
			if plan == nil {
				continue
			}
			events, err := state.App.ClaimDiscard(state.Game, seat, plan.CardIDs, nil)
			if err != nil {
				logger.Warn("tickClaimWindow: bot %s claim rejected: %v", userID, err)
				continue
			}
			mh.broadcastEvents(ctx, state, dispatcher, logger, events)
			return
		}
	}

	events, err := state.App.PassClaim(state.Game)
	if err != nil {
		logger.Error("tickClaimWindow: pass failed: %v", err)
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// Auto-fill a solo human lobby after the configured delay.
	if state.Game == nil {
		if state.humanCount() == 1 {
			if state.SoloSinceTick == 0 {
				state.SoloSinceTick = state.Tick
			}
			if state.Tick-state.SoloSinceTick >= int64(state.AutoFillDelay) {
				mh.fillWithBots(state, dispatcher, logger)
				state.SoloSinceTick = 0
			}
		} else {
			state.SoloSinceTick = 0
		}
		return
	}

	if state.Game.Phase != domain.PhaseAction && state.Game.Phase != domain.PhaseDiscard {
		state.BotWaitUntil = 0
		return
	}
	// Give the claim window its full duration before the next bot acts.
	if state.Game.Pending != nil {
		return
	}

	currentSeat := state.Game.Current
	currentUserID := state.Game.Players[currentSeat].ID
	if !bot.IsBot(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[currentUserID]
	if !exists {
		brain, err := bot.NewBrain("")
		if err != nil {
			logger.Error("processBots: failed to create fallback brain: %v", err)
			return
		}
		agent = &bot.Agent{ID: currentUserID, Strategy: brain}
		state.Bots[currentUserID] = agent
	}

	events, err := bot.Execute(state.App, state.Game, currentSeat, agent.Strategy)
	if err != nil {
		logger.Error("processBots: bot %s turn failed: %v", currentUserID, err)
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) fillWithBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	added := false
	for i, seat := range state.Seats {
		if seat != "" {
			continue
		}
		identity := bot.GetBotIdentity(i)
		brain, err := bot.NewBrain(identity.Difficulty)
		if err != nil {
			logger.Error("fillWithBots: %v", err)
			continue
		}
		state.Seats[i] = identity.UserID
		state.Bots[identity.UserID] = &bot.Agent{
			ID:       identity.UserID,
			Name:     identity.DisplayName,
			Strategy: brain,
		}
		logger.Info("fillWithBots: added bot %s to seat %d", identity.UserID, i)
		added = true
	}
	if added {
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(state, dispatcher, logger)
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: user %s is not the owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner can start the game")
		return
	}
	if state.Game != nil && state.Game.Phase != domain.PhaseGameOver {
		mh.sendError(state, dispatcher, logger, senderID, 409, "game already running")
		return
	}

	ids := make([]string, 0, len(state.Seats))
	names := make([]string, 0, len(state.Seats))
	for _, userID := range state.Seats {
		if userID == "" {
			continue
		}
		ids = append(ids, userID)
		names = append(names, mh.displayName(state, userID))
	}

	game, events, err := state.App.StartMatch(ids, names)
	if err != nil {
		logger.Warn("StartGame: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = game

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	logger.Info("StartGame: started with %d players.", len(ids))
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.requireGameSeat(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	var req PlayCardRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid play_card payload")
		return
	}
	var decl *domain.Declaration
	if req.Declaration != nil {
		d := req.Declaration.toDomain()
		decl = &d
	}

	events, err := state.App.PlayCard(state.Game, seat, req.CardID, decl)
	if err != nil {
		logger.Warn("handlePlayCard: seat %d: %v", seat, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePlayMeld(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.requireGameSeat(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	var req PlayMeldRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid play_meld payload")
		return
	}

	events, err := state.App.PlayMeld(state.Game, seat, req.CardIDs, toDomainDeclarations(req.Declarations))
	if err != nil {
		logger.Warn("handlePlayMeld: seat %d: %v", seat, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleDrawCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.requireGameSeat(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	events, err := state.App.DrawCard(state.Game, seat)
	if err != nil {
		logger.Warn("handleDrawCard: seat %d: %v", seat, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleDiscardCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.requireGameSeat(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	var req DiscardCardRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid discard payload")
		return
	}

	events, err := state.App.DiscardCard(state.Game, seat, req.CardID)
	if err != nil {
		logger.Warn("handleDiscardCard: seat %d: %v", seat, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleKnock(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.requireGameSeat(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	events, err := state.App.Knock(state.Game, seat)
	if err != nil {
		logger.Warn("handleKnock: seat %d: %v", seat, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleClaimDiscard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat, ok := mh.requireGameSeat(state, dispatcher, logger, msg)
	if !ok {
		return
	}
	var req ClaimDiscardRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid claim payload")
		return
	}

	events, err := state.App.ClaimDiscard(state.Game, seat, req.CardIDs, toDomainDeclarations(req.Declarations))
	if err != nil {
		logger.Warn("handleClaimDiscard: seat %d: %v", seat, err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	state.ClaimDeadline = 0
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePassClaim(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Game == nil || state.Game.Pending == nil {
		return
	}
	// Only the discarder's successor waiting on the window may short-cut it.
	if state.Game.SeatOf(msg.GetUserId()) != state.Game.Current {
		return
	}
	state.ClaimDeadline = 0
	events, err := state.App.PassClaim(state.Game)
	if err != nil {
		logger.Error("handlePassClaim: %v", err)
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleRequestAdvice(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Game == nil || state.Advisor == nil {
		return
	}
	pl := state.Game.PlayerAt(state.Game.SeatOf(msg.GetUserId()))
	if pl == nil {
		return
	}

	snap := advisory.Snapshot{
		Hand:        pl.Hand,
		Board:       state.Game.Board,
		HandPoints:  domain.HandPoints(pl.Hand),
		DeckRemain:  len(state.Game.Deck),
		PlayerCount: len(state.Game.Players),
	}
	if top, ok := state.Game.TopDiscard(); ok {
		snap.TopDiscard = &top
	}

	adviceCtx, cancel := context.WithTimeout(ctx, adviceTimeout)
	defer cancel()
	advice := state.Advisor.Suggest(adviceCtx, snap)

	mh.sendTo(state, dispatcher, logger, msg.GetUserId(), OpAdvice, AdviceMessage{Advice: advice})
}

// requireGameSeat resolves the sender's seat and checks a game is running.
func (mh *matchHandler) requireGameSeat(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) (int, bool) {
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 409, "game not started")
		return -1, false
	}
	seat := state.Game.SeatOf(msg.GetUserId())
	if seat < 0 {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 403, "not seated in this game")
		return -1, false
	}
	return seat, true
}

func (mh *matchHandler) broadcastEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

var eventOpcodes = map[app.EventKind]int64{
	app.EventMatchStarted:   OpMatchStarted,
	app.EventHandDealt:      OpHandDealt,
	app.EventRoundStarted:   OpRoundStarted,
	app.EventCardPlayed:     OpCardPlayed,
	app.EventMeldPlayed:     OpMeldPlayed,
	app.EventCardDrawn:      OpCardDrawn,
	app.EventCardDiscarded:  OpCardDiscarded,
	app.EventDiscardClaimed: OpDiscardClaimed,
	app.EventClaimPassed:    OpClaimPassed,
	app.EventKnocked:        OpKnocked,
	app.EventRoundEnded:     OpRoundEnded,
	app.EventMatchEnded:     OpMatchEnded,
}

func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpcodes[ev.Kind]
	if !ok {
		logger.Warn("broadcastEvent: unknown event kind %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("broadcastEvent: failed to marshal %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events whose recipients are all disconnected or bots must
		// not leak to the rest of the table.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)

	if ev.Kind == app.EventMatchEnded {
		state.Game = nil
		state.ClaimDeadline = 0
		state.BotWaitUntil = 0
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snapshot := MatchStateMessage{
		OwnerSeat:   state.OwnerSeat,
		Phase:       string(domain.PhaseLobby),
		CurrentSeat: -1,
	}
	if state.Game != nil {
		snapshot.Phase = string(state.Game.Phase)
		snapshot.Round = state.Game.Round
		snapshot.CurrentSeat = state.Game.Current
		for suit := domain.Suit(0); suit < domain.NumSuits; suit++ {
			seq := state.Game.Board[suit]
			snapshot.Board = append(snapshot.Board, SequenceState{
				Suit:   int(suit),
				Low:    seq.Low,
				High:   seq.High,
				IsOpen: seq.HasSeven,
			})
		}
		if top, ok := state.Game.TopDiscard(); ok {
			snapshot.TopDiscard = &top
		}
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		seatState := SeatState{
			UserID:      userID,
			Seat:        i,
			DisplayName: mh.displayName(state, userID),
			IsOwner:     i == state.OwnerSeat,
			IsBot:       bot.IsBot(userID),
		}
		if state.Game != nil {
			if pl := state.Game.PlayerAt(state.Game.SeatOf(userID)); pl != nil {
				seatState.CardsRemaining = len(pl.Hand)
				seatState.Score = pl.Score
			}
		}
		snapshot.Seats = append(snapshot.Seats, seatState)
	}

	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("broadcastMatchState: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, bytes, nil, nil, true)
}

func (mh *matchHandler) displayName(state *MatchState, userID string) string {
	if p, exists := state.Presences[userID]; exists {
		return p.GetUsername()
	}
	if agent, exists := state.Bots[userID]; exists && agent.Name != "" {
		return agent.Name
	}
	if identity, ok := bot.GetBotConfig(userID); ok {
		return identity.DisplayName
	}
	return userID
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	mh.sendTo(state, dispatcher, logger, userID, OpError, ErrorMessage{Code: code, Message: message})
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload any) {
	presence, ok := state.Presences[userID]
	if !ok {
		// Bots have no presence; nothing to deliver.
		return
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("sendTo: failed to marshal opcode %d: %v", opCode, err)
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) labelString(state *MatchState, logger runtime.Logger) string {
	phase := string(domain.PhaseLobby)
	if state.Game != nil {
		phase = string(state.Game.Phase)
	}
	bytes, err := json.Marshal(matchLabel{
		Open:  state.openSeatCount(),
		Game:  MatchNameFanTan,
		Phase: phase,
	})
	if err != nil {
		logger.Error("labelString: %v", err)
		return ""
	}
	return string(bytes)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(mh.labelString(state, logger)); err != nil {
		logger.Error("updateLabel: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
