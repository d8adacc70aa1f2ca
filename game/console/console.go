// Package console plays a game against the computer on a text terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"

	"github.com/wricardo/battleship-game/game/engine"
	"github.com/wricardo/battleship-game/game/input"
	"github.com/wricardo/battleship-game/game/render"
)

// ErrQuit is returned by the input readers when the player types quit.
var ErrQuit = errors.New("player quit")

// Runner drives one game from lines of text input
type Runner struct {
	lines  *bufio.Scanner
	out    io.Writer
	game   *engine.GameEngine
	rng    *rand.Rand
	seed   int64
	logger *slog.Logger
}

// NewRunner creates a game with config and seed that reads commands from in
// and writes prompts and boards to out.
func NewRunner(in io.Reader, out io.Writer, config *engine.GameConfig, seed int64, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rng := engine.NewRand(seed)
	game, err := engine.NewEngine(config, rng)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	return &Runner{
		lines:  bufio.NewScanner(in),
		out:    out,
		game:   game,
		rng:    rng,
		seed:   seed,
		logger: logger,
	}, nil
}

// Game returns the engine being played.
func (r *Runner) Game() *engine.GameEngine {
	return r.game
}

// Run plays until one fleet is sunk, the input ends or the player quits.
// Running out of input and quitting are not errors.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Debug("console game started", "seed", r.seed, "config", r.game.GetConfig().Name)
	fmt.Fprintf(r.out, "%s\n(seed %d, type quit to leave)\n\n", r.game.GetConfig().Messages.Welcome, r.seed)

	if err := r.placeFleet(ctx); err != nil {
		return r.stop(err)
	}
	if err := r.game.PlaceComputerFleet(); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "The computer has placed its fleet. Fire away!")
	r.printBoards()

	shooters := engine.Shooters{
		Player:   engine.NewManualShooter(engine.CoordSourceFunc(r.readShot)),
		Computer: engine.NewRandomShooter(r.rng),
	}
	winner, err := r.game.Play(ctx, shooters, r.report)
	if err != nil {
		return r.stop(err)
	}

	r.logger.Info("console game finished", "winner", winner, "shots", len(r.game.History()))
	return nil
}

// stop turns the ways a player can walk away into a clean exit.
func (r *Runner) stop(err error) error {
	if errors.Is(err, ErrQuit) || errors.Is(err, io.EOF) {
		fmt.Fprintln(r.out, "Goodbye.")
		return nil
	}
	return err
}

func (r *Runner) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.lines.Scan() {
		if err := r.lines.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSpace(r.lines.Text())
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return "", ErrQuit
	}
	return line, nil
}

func (r *Runner) placeFleet(ctx context.Context) error {
	for r.game.Phase() == engine.PhasePlacementPlayer {
		remaining := r.game.RemainingSizes(engine.Player)
		fmt.Fprint(r.out, render.Board(r.game.Snapshot(engine.Player)))
		fmt.Fprintf(r.out, "Ships left to place: %v\n", remaining)
		fmt.Fprintf(r.out, "Place your %d-cell ship (e.g. H09, V85, \"2 H45\" for another size, or auto): ", remaining[0])

		line, err := r.readLine(ctx)
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		if input.IsAuto(line) {
			if err := r.game.AutoPlacePlayerFleet(); err != nil {
				return err
			}
			fmt.Fprintln(r.out, "Fleet placed at random.")
			fmt.Fprint(r.out, render.Board(r.game.Snapshot(engine.Player)))
			continue
		}

		size, placement, err := parseShipLine(line, remaining[0])
		if err != nil {
			fmt.Fprintf(r.out, "Could not read %q: %v\n", line, err)
			continue
		}
		if _, err := r.game.PlaceShip(placement.Origin, size, placement.Orientation); err != nil {
			fmt.Fprintf(r.out, "Cannot place there: %v\n", err)
			continue
		}
		r.logger.Debug("ship placed", "size", size, "origin", placement.Origin, "orientation", placement.Orientation)
	}
	return nil
}

// parseShipLine reads a placement, optionally prefixed by the ship size.
func parseShipLine(line string, defaultSize int) (int, input.Placement, error) {
	placement, err := input.ParsePlacement(line)
	if err == nil {
		return defaultSize, placement, nil
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, input.Placement{}, err
	}
	size, convErr := strconv.Atoi(fields[0])
	if convErr != nil {
		return 0, input.Placement{}, err
	}
	placement, err = input.ParsePlacement(strings.TrimSpace(line[len(fields[0]):]))
	if err != nil {
		return 0, input.Placement{}, err
	}
	return size, placement, nil
}

// readShot prompts until the player types a coordinate on the board.
func (r *Runner) readShot(ctx context.Context) (engine.Coord, error) {
	for {
		fmt.Fprint(r.out, "Your shot (e.g. B4 or 14): ")
		line, err := r.readLine(ctx)
		if err != nil {
			return engine.Coord{}, err
		}
		if strings.EqualFold(line, "board") {
			r.printBoards()
			continue
		}

		c, err := input.ParseCoord(line)
		if err != nil {
			fmt.Fprintf(r.out, "Could not read %q: %v\n", line, err)
			continue
		}
		return c, nil
	}
}

func (r *Runner) report(result engine.TurnResult) {
	who := "You fire"
	if result.Shooter == engine.Computer {
		who = "Computer fires"
	}
	fmt.Fprintf(r.out, "%s at %s: %s\n", who, input.FormatCoord(result.Shot.Coord), result.Message)

	switch {
	case result.GameOver:
		fmt.Fprintln(r.out)
		fmt.Fprint(r.out, render.SideBySide(
			"Your fleet", r.game.Snapshot(engine.Player),
			"Enemy fleet", r.game.Snapshot(engine.Computer),
		))
	case result.Shot.Outcome == engine.OutcomeAlreadyFired:
	case result.Turn == engine.Player:
		r.printBoards()
	}
}

func (r *Runner) printBoards() {
	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, render.SideBySide(
		"Your fleet", r.game.Snapshot(engine.Player),
		"Enemy waters", r.game.Fog(engine.Computer),
	))
	fmt.Fprintln(r.out, render.Legend())
}
