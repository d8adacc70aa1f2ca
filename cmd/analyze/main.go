// Command analyze simulates games between two random shooters for every rule
// preset in the configs directory and prints how long games run and how often
// the side that fires first wins.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/battleship-game/game/config"
	"github.com/wricardo/battleship-game/game/engine"
)

// Summary aggregates the simulated games of one preset.
type Summary struct {
	Config         string
	Games          int
	FirstMoverWins int
	TotalShots     int
	MinShots       int
	MaxShots       int
}

// AverageShots returns the mean number of recorded shots per game.
func (s Summary) AverageShots() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalShots) / float64(s.Games)
}

// FirstMoverRate returns the share of games won by the side firing first.
func (s Summary) FirstMoverRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.FirstMoverWins) / float64(s.Games)
}

// simulate plays one game with both fleets placed at random and both sides
// firing at random. It returns the winner and the number of recorded shots.
func simulate(ctx context.Context, cfg *engine.GameConfig, seed int64) (engine.Side, int, error) {
	rng := engine.NewRand(seed)
	game, err := engine.NewEngine(cfg, rng)
	if err != nil {
		return 0, 0, err
	}
	if err := game.AutoPlacePlayerFleet(); err != nil {
		return 0, 0, err
	}
	if err := game.PlaceComputerFleet(); err != nil {
		return 0, 0, err
	}

	shooters := engine.Shooters{
		Player:   engine.NewRandomShooter(rng),
		Computer: engine.NewRandomShooter(rng),
	}
	winner, err := game.Play(ctx, shooters, nil)
	if err != nil {
		return 0, 0, err
	}
	return winner, len(game.History()), nil
}

// analyze runs games simulations of cfg with seeds baseSeed, baseSeed+1, ...
func analyze(ctx context.Context, cfg *engine.GameConfig, games int, baseSeed int64) (Summary, error) {
	summary := Summary{Config: cfg.Name}
	for i := 0; i < games; i++ {
		winner, shots, err := simulate(ctx, cfg, baseSeed+int64(i))
		if err != nil {
			return summary, fmt.Errorf("game %d: %w", i, err)
		}

		summary.Games++
		summary.TotalShots += shots
		if winner == engine.Player {
			summary.FirstMoverWins++
		}
		if summary.MinShots == 0 || shots < summary.MinShots {
			summary.MinShots = shots
		}
		if shots > summary.MaxShots {
			summary.MaxShots = shots
		}
	}
	return summary, nil
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Games: %d\n", s.Games)
	fmt.Fprintf(w, "Shots per game: avg %.1f, min %d, max %d\n", s.AverageShots(), s.MinShots, s.MaxShots)
	fmt.Fprintf(w, "First mover wins: %d (%.1f%%)\n", s.FirstMoverWins, 100*s.FirstMoverRate())
}

// analyzeDir simulates every valid preset found in dir.
func analyzeDir(ctx context.Context, dir string, games int, seed int64, w io.Writer) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	presets, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		return fmt.Errorf("no presets in %s", dir)
	}

	for _, preset := range presets {
		cfg, err := manager.LoadConfig(preset.ConfigID)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", preset.Filename)
		fmt.Fprintf(w, "Name: %s\n", cfg.Name)
		fmt.Fprintf(w, "Moat reveal: %t, hit keeps turn: %t\n", cfg.MoatReveal, cfg.HitRetainsTurn)

		summary, err := analyze(ctx, cfg, games, seed)
		if err != nil {
			return fmt.Errorf("%s: %w", preset.ConfigID, err)
		}
		printSummary(w, summary)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Simulate random-vs-random games for each rule preset",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Directory containing game configurations"},
			&cli.IntFlag{Name: "games", Value: 200, Usage: "Games to simulate per preset"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "Seed of the first game"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return analyzeDir(ctx, cmd.String("dir"), cmd.Int("games"), cmd.Int64("seed"), os.Stdout)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
