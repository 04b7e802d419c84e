package nakama

// MatchNameFanTan is the match handler name registered with the runtime.
const MatchNameFanTan = "fantan"

// Client -> server opcodes.
const (
	OpStartGame int64 = iota + 1
	OpPlayCard
	OpPlayMeld
	OpDrawCard
	OpDiscardCard
	OpKnock
	OpClaimDiscard
	OpPassClaim
	OpRequestAdvice
)

// Server -> client opcodes.
const (
	OpMatchState int64 = iota + 100
	OpError
	OpAdvice
)

// Server -> client event opcodes, one per app event kind.
const (
	OpMatchStarted int64 = iota + 110
	OpHandDealt
	OpRoundStarted
	OpCardPlayed
	OpMeldPlayed
	OpCardDrawn
	OpCardDiscarded
	OpDiscardClaimed
	OpClaimPassed
	OpKnocked
	OpRoundEnded
	OpMatchEnded
)
