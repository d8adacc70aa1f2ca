package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/battleship-game/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Placement
	PlaceShip(ctx context.Context, sessionID string, req PlaceShipRequest) (*PlacementResult, error)
	AutoPlace(ctx context.Context, sessionID string) (*PlacementResult, error)

	// Play
	Fire(ctx context.Context, sessionID string, target engine.Coord) (*FireResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameView, error)
	GetShotHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents one game between a human and the computer
type Session struct {
	ID       string
	ConfigID string
	// Seed reproduces both fleet layouts and the computer's shots.
	Seed     int64
	Engine   *engine.GameEngine
	Computer engine.Shooter
	Config   *engine.GameConfig

	// LastMessage is the most recent outcome text shown to the player.
	LastMessage string
	CreatedAt   time.Time

	// lastAccessed is touched by read-only requests, so it has its own lock.
	accessMu     sync.Mutex
	lastAccessed time.Time
}

// Touch records t as the session's last access time.
func (s *Session) Touch(t time.Time) {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	s.lastAccessed = t
}

// LastAccessed returns the time the session was last touched.
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.lastAccessed
}
