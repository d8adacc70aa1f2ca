package service

import (
	"time"

	"github.com/wricardo/battleship-game/game/engine"
)

// CreateSessionRequest selects the rules and randomness of a new game
type CreateSessionRequest struct {
	ConfigID string `json:"config_id,omitempty"`
	// Seed fixes the game's randomness. Nil picks a fresh one.
	Seed *int64 `json:"seed,omitempty"`
	// AutoPlace places the player's fleet at random and starts the game.
	AutoPlace bool `json:"auto_place,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Seed           int64              `json:"seed"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *GameView          `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlaceShipRequest places one of the player's ships
type PlaceShipRequest struct {
	Size        int                `json:"size"`
	Row         int                `json:"row"`
	Col         int                `json:"col"`
	Orientation engine.Orientation `json:"orientation"`
}

// PlacementResult reports a placement and the state after it
type PlacementResult struct {
	ShipID    engine.ShipID `json:"ship_id,omitempty"`
	Message   string        `json:"message"`
	GameState *GameView     `json:"game_state"`
}

// FireResult contains the player's shot and every computer shot it triggered
type FireResult struct {
	Player    engine.TurnResult   `json:"player"`
	Computer  []engine.TurnResult `json:"computer,omitempty"`
	Events    []GameEvent         `json:"events"`
	GameState *GameView           `json:"game_state"`
}

// GameView is the player's view of a game: their own board in full and the
// computer's board under fog.
type GameView struct {
	SessionID string       `json:"session_id"`
	Phase     engine.Phase `json:"phase"`
	// Turn is set while the game is active.
	Turn     *engine.Side `json:"turn,omitempty"`
	GameOver bool         `json:"game_over"`
	Winner   *engine.Side `json:"winner,omitempty"`

	OwnBoard   engine.Grid         `json:"own_board"`
	EnemyBoard engine.Grid         `json:"enemy_board"`
	Ships      []engine.ShipStatus `json:"ships"`

	RemainingSizes      []int  `json:"remaining_sizes"`
	PlayerShipsAfloat   int    `json:"player_ships_afloat"`
	ComputerShipsAfloat int    `json:"computer_ships_afloat"`
	ShotsFired          int    `json:"shots_fired"`
	Message             string `json:"message"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // "shot", "sunk", "turn", "victory", "defeat"
	Side      engine.Side   `json:"side"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Coord     *engine.Coord `json:"coord,omitempty"`
}

// HistoryOptions configures shot history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated shot history
type HistoryResponse struct {
	Shots       []engine.ShotRecord `json:"shots"`
	TotalShots  int                 `json:"total_shots"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename       string `json:"filename"`
	ConfigID       string `json:"config_id"` // The identifier to use for session creation
	Name           string `json:"name"`      // Display name
	Description    string `json:"description"`
	MoatReveal     bool   `json:"moat_reveal"`
	HitRetainsTurn bool   `json:"hit_retains_turn"`
}
