package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	ScoreCeiling       int `json:"score_ceiling"`
	ClaimWindowSeconds int `json:"claim_window_seconds"`
	// Bot turns are delayed a random number of seconds in this range so
	// their pacing reads as human.
	BotMinDelaySeconds int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int `json:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds is how long a solo human lobby waits before
	// bots fill the empty seats.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or nil before loading.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetScoreCeiling returns the configured game-over threshold.
func GetScoreCeiling() int {
	if cfg == nil || cfg.ScoreCeiling <= 0 {
		return 100 // Safe default
	}
	return cfg.ScoreCeiling
}

// GetClaimWindowSeconds returns how long a discard stays claimable.
func GetClaimWindowSeconds() int {
	if cfg == nil || cfg.ClaimWindowSeconds <= 0 {
		return 5
	}
	return cfg.ClaimWindowSeconds
}

// GetBotDelaySeconds returns the min and max seconds a bot waits before acting.
func GetBotDelaySeconds() (int, int) {
	min, max := 1, 3
	if cfg != nil && cfg.BotMinDelaySeconds > 0 {
		min = cfg.BotMinDelaySeconds
	}
	if cfg != nil && cfg.BotMaxDelaySeconds >= min {
		max = cfg.BotMaxDelaySeconds
	}
	if max < min {
		max = min
	}
	return min, max
}

// GetBotAutoFillDelaySeconds returns the solo-lobby wait before bots join.
func GetBotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 5
	}
	return cfg.BotAutoFillDelaySeconds
}
