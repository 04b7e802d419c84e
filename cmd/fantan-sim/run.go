package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fantan/internal/app"
	"fantan/internal/bot"
	"fantan/internal/domain"
)

var (
	flagGames   int
	flagPlayers int
	flagSeed    int64
	flagCeiling int
	flagVerbose bool
)

// maxTurnsPerMatch aborts a match that somehow stops making progress.
const maxTurnsPerMatch = 100000

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of bot-vs-bot matches and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPlayers < app.MinPlayers || flagPlayers > app.MaxPlayers {
			return fmt.Errorf("players must be between %d and %d", app.MinPlayers, app.MaxPlayers)
		}
		if flagGames < 1 {
			return fmt.Errorf("games must be at least 1")
		}

		log := zap.NewNop()
		if flagVerbose {
			dev, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			log = dev
		}
		defer log.Sync()

		seed := flagSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		fmt.Printf("Running %d match(es) with %d players (seed %d)\n", flagGames, flagPlayers, seed)

		wins := make([]int, flagPlayers)
		rounds := 0
		start := time.Now()
		for i := 0; i < flagGames; i++ {
			winner, playedRounds, err := runMatch(rng, flagPlayers, flagCeiling, log)
			if err != nil {
				return fmt.Errorf("match %d: %w", i+1, err)
			}
			wins[winner]++
			rounds += playedRounds
			log.Info("match finished",
				zap.Int("match", i+1),
				zap.Int("winner", winner),
				zap.Int("rounds", playedRounds))
		}

		fmt.Println()
		color.New(color.Bold).Println("Results")
		for seat, count := range wins {
			line := fmt.Sprintf("  seat %d: %d win(s)", seat, count)
			if count == maxInt(wins) {
				color.Green(line)
			} else {
				fmt.Println(line)
			}
		}
		fmt.Printf("\n%d round(s) across %d match(es) in %s\n", rounds, flagGames, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&flagGames, "games", 10, "number of matches to run")
	runCmd.Flags().IntVar(&flagPlayers, "players", 4, "players per match")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "rng seed (0 picks one from the clock)")
	runCmd.Flags().IntVar(&flagCeiling, "ceiling", 0, "score ceiling (0 uses the default)")
	runCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "log every match result")
}

// runMatch plays one full match with a greedy brain in every seat and
// returns the winning seat and the number of rounds played.
func runMatch(rng *rand.Rand, players, ceiling int, log *zap.Logger) (int, int, error) {
	svc := app.NewService(rng, ceiling)

	ids := make([]string, players)
	names := make([]string, players)
	brains := make([]bot.Brain, players)
	for i := range ids {
		identity := bot.GetBotIdentity(i)
		ids[i] = identity.UserID
		names[i] = identity.DisplayName
		brain, err := bot.NewBrain(identity.Difficulty)
		if err != nil {
			return 0, 0, err
		}
		brains[i] = brain
	}

	g, _, err := svc.StartMatch(ids, names)
	if err != nil {
		return 0, 0, err
	}

	for turn := 0; turn < maxTurnsPerMatch; turn++ {
		if g.Phase == domain.PhaseGameOver {
			return g.Winner, g.Round, nil
		}

		// Resolve the claim window before the next turn, offering the
		// discard to each other seat in order.
		if g.Pending != nil {
			if !offerClaim(svc, g, brains, log) {
				if _, err := svc.PassClaim(g); err != nil {
					return 0, 0, err
				}
			}
			continue
		}

		seat := g.Current
		if _, err := bot.Execute(svc, g, seat, brains[seat]); err != nil {
			return 0, 0, err
		}
	}
	return 0, 0, fmt.Errorf("match made no progress after %d turns", maxTurnsPerMatch)
}

func offerClaim(svc *app.Service, g *domain.Game, brains []bot.Brain, log *zap.Logger) bool {
	discarder := g.Pending.Discarder
	for off := 1; off < len(brains); off++ {
		seat := (discarder + off) % len(brains)
		plan := brains[seat].ConsiderClaim(g, seat)
		if plan == nil {
			continue
		}
		if _, err := svc.ClaimDiscard(g, seat, plan.CardIDs, nil); err != nil {
			log.Warn("claim rejected", zap.Int("seat", seat), zap.Error(err))
			continue
		}
		log.Debug("discard claimed", zap.Int("seat", seat))
		return true
	}
	return false
}

func maxInt(values []int) int {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
