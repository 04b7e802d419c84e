package nakama

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"fantan/internal/advisory"
	"fantan/internal/bot"
	"fantan/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// advisoryClient is shared across matches; the backing HTTP client is safe
// for concurrent use.
var advisoryClient *advisory.Client

// InitModule wires the match handler and shared services into the Nakama
// runtime. Config and identity files are optional; missing ones only warn.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: could not load game config: %v", err)
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: could not load bot identities: %v", err)
	} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
		logger.Warn("InitModule: could not provision bots: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		zlog = zap.NewNop()
	}
	advisoryClient = advisory.NewClientFromEnv(zlog)
	if !advisoryClient.Enabled() {
		logger.Info("InitModule: advisory has no API key; serving fallback advice.")
	}

	if err := initializer.RegisterMatch(MatchNameFanTan, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("FanTan Go module loaded.")
	return nil
}
