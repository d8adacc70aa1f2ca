package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrWrongPhase = errors.New("operation not allowed in the current phase")
	ErrGameOver   = errors.New("game is over")
	ErrNoRand     = errors.New("random generator is required")
	ErrNoShooter  = errors.New("no shooter for the active side")
)

// Engine is the contract of the turn controller
type Engine interface {
	// Setup
	PlaceShip(origin Coord, size int, orientation Orientation) (ShipID, error)
	CanPlace(origin Coord, size int, orientation Orientation) bool
	AutoPlacePlayerFleet() error
	PlaceComputerFleet() error

	// Play
	Fire(c Coord) (TurnResult, error)
	Step(ctx context.Context, shooters Shooters) (TurnResult, error)
	Play(ctx context.Context, shooters Shooters, observe func(TurnResult)) (Side, error)

	// State
	Phase() Phase
	Turn() Side
	Winner() (Side, bool)
	IsGameOver() bool
	Snapshot(side Side) Grid
	Fog(side Side) Grid
	Ships(side Side) []ShipStatus
	RemainingSizes(side Side) []int
	ShipsAfloat(side Side) int
	History() []ShotRecord
	GetConfig() *GameConfig
}

// Shooters pairs a strategy with each side
type Shooters struct {
	Player   Shooter
	Computer Shooter
}

// For returns the shooter of side.
func (s Shooters) For(side Side) Shooter {
	if side == Computer {
		return s.Computer
	}
	return s.Player
}

// ShotRecord is one entry of the shot log
type ShotRecord struct {
	Seq       int     `json:"seq"`
	Shooter   Side    `json:"shooter"`
	Coord     Coord   `json:"coord"`
	Outcome   Outcome `json:"outcome"`
	Sunk      bool    `json:"sunk,omitempty"`
	ShipSize  int     `json:"ship_size,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// TurnResult is what the controller reports after applying one shot
type TurnResult struct {
	Shooter    Side       `json:"shooter"`
	Shot       ShotResult `json:"shot"`
	TurnPassed bool       `json:"turn_passed"`
	// Turn is the side to fire next.
	Turn     Side   `json:"turn"`
	GameOver bool   `json:"game_over"`
	Winner   *Side  `json:"winner,omitempty"`
	Message  string `json:"message"`
}

// GameEngine runs one game between the player and the computer. It is not
// safe for concurrent use.
type GameEngine struct {
	config  *GameConfig
	rng     *rand.Rand
	boards  [2]*Board
	phase   Phase
	turn    Side
	winner  Side
	history []ShotRecord
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a game in the player placement phase. rng is used for
// computer fleet placement and any automatic placement requested later.
func NewEngine(config *GameConfig, rng *rand.Rand) (*GameEngine, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, ErrNoRand
	}

	return &GameEngine{
		config: config,
		rng:    rng,
		boards: [2]*Board{
			NewBoard(config.MoatReveal),
			NewBoard(config.MoatReveal),
		},
		phase: PhasePlacementPlayer,
		turn:  Player,
	}, nil
}

// GetConfig returns the rules in use
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Phase returns the current phase
func (e *GameEngine) Phase() Phase {
	return e.phase
}

// Turn returns the side to fire next. It is only meaningful while active.
func (e *GameEngine) Turn() Side {
	return e.turn
}

// Winner returns the winning side once the game is over.
func (e *GameEngine) Winner() (Side, bool) {
	if e.phase != PhaseGameOver {
		return 0, false
	}
	return e.winner, true
}

// IsGameOver reports whether one fleet has been sunk
func (e *GameEngine) IsGameOver() bool {
	return e.phase == PhaseGameOver
}

// PlaceShip places one of the player's ships. Completing the fleet moves the
// game on to computer placement.
func (e *GameEngine) PlaceShip(origin Coord, size int, orientation Orientation) (ShipID, error) {
	if e.phase != PhasePlacementPlayer {
		return 0, fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	id, err := e.boards[Player].PlaceShip(origin, size, orientation)
	if err != nil {
		return 0, err
	}
	e.advancePlacement()
	return id, nil
}

// CanPlace reports whether the player could place the given ship now.
func (e *GameEngine) CanPlace(origin Coord, size int, orientation Orientation) bool {
	if e.phase != PhasePlacementPlayer {
		return false
	}
	return e.boards[Player].CanPlace(origin, size, orientation)
}

// AutoPlacePlayerFleet fills the rest of the player's fleet at random.
func (e *GameEngine) AutoPlacePlayerFleet() error {
	if e.phase != PhasePlacementPlayer {
		return fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	if err := AutoPlaceFleet(e.boards[Player], e.rng); err != nil {
		return err
	}
	e.advancePlacement()
	return nil
}

// PlaceComputerFleet places the computer's fleet and starts play with the
// player to fire first.
func (e *GameEngine) PlaceComputerFleet() error {
	if e.phase != PhasePlacementComputer {
		return fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	if err := AutoPlaceFleet(e.boards[Computer], e.rng); err != nil {
		return err
	}
	e.phase = PhaseActive
	e.turn = Player
	return nil
}

func (e *GameEngine) advancePlacement() {
	if e.boards[Player].FleetComplete() {
		e.phase = PhasePlacementComputer
	}
}

// Fire applies a shot by the side holding the turn to the opponent's board.
func (e *GameEngine) Fire(c Coord) (TurnResult, error) {
	switch e.phase {
	case PhaseActive:
	case PhaseGameOver:
		return TurnResult{}, ErrGameOver
	default:
		return TurnResult{}, fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}

	shooter := e.turn
	shot, err := e.boards[shooter.Opponent()].Fire(c)
	if err != nil {
		return TurnResult{}, err
	}

	result := TurnResult{Shooter: shooter, Shot: shot}
	if shot.Outcome == OutcomeAlreadyFired {
		result.Turn = e.turn
		result.Message = e.config.Messages.AlreadyFired
		return result, nil
	}

	e.history = append(e.history, ShotRecord{
		Seq:       len(e.history) + 1,
		Shooter:   shooter,
		Coord:     c,
		Outcome:   shot.Outcome,
		Sunk:      shot.Sunk,
		ShipSize:  shot.ShipSize,
		Timestamp: time.Now().Unix(),
	})

	if shot.Outcome == OutcomeMiss || !e.config.HitRetainsTurn {
		e.turn = shooter.Opponent()
		result.TurnPassed = true
	}
	result.Turn = e.turn
	result.Message = e.describe(shot)

	if e.checkGameOver() {
		winner := e.winner
		result.GameOver = true
		result.Winner = &winner
		if winner == Player {
			result.Message += " " + e.config.Messages.Victory
		} else {
			result.Message += " " + e.config.Messages.Defeat
		}
	}
	return result, nil
}

// checkGameOver ends the game if either fleet is fully sunk.
func (e *GameEngine) checkGameOver() bool {
	playerSunk := e.boards[Player].AllSunk()
	computerSunk := e.boards[Computer].AllSunk()
	if !playerSunk && !computerSunk {
		return false
	}
	e.phase = PhaseGameOver
	if computerSunk {
		e.winner = Player
	} else {
		e.winner = Computer
	}
	return true
}

func (e *GameEngine) describe(shot ShotResult) string {
	switch {
	case shot.Sunk:
		return fmt.Sprintf(e.config.Messages.Sunk, shot.ShipSize)
	case shot.Outcome == OutcomeHit:
		return e.config.Messages.Hit
	default:
		return e.config.Messages.Miss
	}
}

// Step asks the active side's shooter for a coordinate and fires it.
func (e *GameEngine) Step(ctx context.Context, shooters Shooters) (TurnResult, error) {
	if e.phase == PhaseGameOver {
		return TurnResult{}, ErrGameOver
	}
	if e.phase != PhaseActive {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	shooter := shooters.For(e.turn)
	if shooter == nil {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrNoShooter, e.turn)
	}

	c, err := shooter.NextShot(ctx, e.boards[e.turn.Opponent()].Fog())
	if err != nil {
		return TurnResult{}, err
	}
	return e.Fire(c)
}

// Play steps until the game is over or ctx ends, calling observe after every
// shot, including ones reported as already fired. Any error from a shooter or
// an off-board coordinate ends play.
func (e *GameEngine) Play(ctx context.Context, shooters Shooters, observe func(TurnResult)) (Side, error) {
	for e.phase != PhaseGameOver {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		result, err := e.Step(ctx, shooters)
		if err != nil {
			return 0, err
		}
		if observe != nil {
			observe(result)
		}
	}
	return e.winner, nil
}

// Snapshot returns the full grid of side's own board.
func (e *GameEngine) Snapshot(side Side) Grid {
	return e.boards[side].Snapshot()
}

// Fog returns side's board as its opponent sees it.
func (e *GameEngine) Fog(side Side) Grid {
	return e.boards[side].Fog()
}

// Ships returns the ships on side's board.
func (e *GameEngine) Ships(side Side) []ShipStatus {
	return e.boards[side].Ships()
}

// RemainingSizes returns the ship sizes side still has to place.
func (e *GameEngine) RemainingSizes(side Side) []int {
	return e.boards[side].RemainingSizes()
}

// ShipsAfloat returns how many of side's ships are not sunk.
func (e *GameEngine) ShipsAfloat(side Side) int {
	return e.boards[side].ShipsAfloat()
}

// History returns a copy of the shot log.
func (e *GameEngine) History() []ShotRecord {
	out := make([]ShotRecord, len(e.history))
	copy(out, e.history)
	return out
}
