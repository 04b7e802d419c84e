package bot

import (
	"fmt"
)

// NewBrain creates a strategy for the requested difficulty. All pool
// difficulties currently map to the greedy strategy.
func NewBrain(difficulty string) (Brain, error) {
	switch difficulty {
	case "", "easy", "medium", "hard", "greedy":
		return &GreedyBrain{}, nil
	default:
		return nil, fmt.Errorf("unknown bot difficulty: %q", difficulty)
	}
}
