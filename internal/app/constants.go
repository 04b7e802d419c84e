package app

const (
	// MinPlayers is the minimum seat count to start a match.
	MinPlayers = 2
	// MaxPlayers is the table capacity; 4 or more players adds a second deck.
	MaxPlayers = 6
	// HandSize is the number of cards dealt to each player per round.
	HandSize = 8
	// DefaultScoreCeiling ends the game once any cumulative score reaches it.
	DefaultScoreCeiling = 100
)
