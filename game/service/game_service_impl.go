package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wricardo/battleship-game/game/engine"
	"github.com/wricardo/battleship-game/game/input"
	"github.com/wricardo/battleship-game/game/random"
	"github.com/wricardo/battleship-game/telemetry"
)

const fleetReadyMessage = "All ships placed. Your turn to fire."

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	newSeed  func() (int64, error)
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		newSeed:  random.NewSeed,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// resolveConfig loads the named configuration or the default one.
func (s *gameServiceImpl) resolveConfig(configName string) (*engine.GameConfig, string, error) {
	if configName == "" {
		config := s.configs.GetDefault()
		return config, s.getConfigID(config.Name), nil
	}

	config, err := s.configs.LoadConfig(configName)
	if err == nil {
		return config, configName, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, "", fmt.Errorf("failed to load config %s: %w", configName, err)
	}

	// Provide helpful error message with available options
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		configIDs := make([]string, 0, len(availableConfigs))
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return nil, "", fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
	}
	return nil, "", fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (info *SessionInfo, err error) {
	_, span := telemetry.StartSpan(ctx, "game.create_session", attribute.String("config.id", req.ConfigID))
	defer func() { telemetry.End(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	config, configID, err := s.resolveConfig(req.ConfigID)
	if err != nil {
		return nil, err
	}

	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed, err = s.newSeed()
		if err != nil {
			return nil, fmt.Errorf("failed to seed session: %w", err)
		}
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configID
	sess.LastMessage = config.Messages.Welcome

	if req.AutoPlace {
		if err := s.autoPlace(sess); err != nil {
			s.sessions.Delete(sess.ID)
			return nil, err
		}
	}

	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.Int64("session.seed", seed))
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// PlaceShip places one of the player's ships. Placing the last one also
// places the computer's fleet and starts the game.
func (s *gameServiceImpl) PlaceShip(ctx context.Context, sessionID string, req PlaceShipRequest) (result *PlacementResult, err error) {
	_, span := telemetry.StartSpan(ctx, "game.place_ship",
		attribute.String("session.id", sessionID),
		attribute.Int("ship.size", req.Size),
	)
	defer func() { telemetry.End(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	origin := engine.Coord{Row: req.Row, Col: req.Col}
	id, err := sess.Engine.PlaceShip(origin, req.Size, req.Orientation)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Placed %d-cell ship at %s %s.", req.Size, input.FormatCoord(origin), req.Orientation)
	if sess.Engine.Phase() == engine.PhasePlacementComputer {
		if err := sess.Engine.PlaceComputerFleet(); err != nil {
			return nil, fmt.Errorf("failed to place computer fleet: %w", err)
		}
		message += " " + fleetReadyMessage
	} else {
		message += fmt.Sprintf(" Remaining sizes: %v.", sess.Engine.RemainingSizes(engine.Player))
	}
	sess.LastMessage = message

	return &PlacementResult{
		ShipID:    id,
		Message:   message,
		GameState: s.buildView(sess),
	}, nil
}

// AutoPlace fills the rest of the player's fleet at random and starts the game.
func (s *gameServiceImpl) AutoPlace(ctx context.Context, sessionID string) (result *PlacementResult, err error) {
	_, span := telemetry.StartSpan(ctx, "game.auto_place", attribute.String("session.id", sessionID))
	defer func() { telemetry.End(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.autoPlace(sess); err != nil {
		return nil, err
	}

	return &PlacementResult{
		Message:   sess.LastMessage,
		GameState: s.buildView(sess),
	}, nil
}

func (s *gameServiceImpl) autoPlace(sess *Session) error {
	if err := sess.Engine.AutoPlacePlayerFleet(); err != nil {
		return err
	}
	if err := sess.Engine.PlaceComputerFleet(); err != nil {
		return fmt.Errorf("failed to place computer fleet: %w", err)
	}
	sess.LastMessage = fleetReadyMessage
	return nil
}

// Fire applies the player's shot, then lets the computer fire for as long as
// it holds the turn.
func (s *gameServiceImpl) Fire(ctx context.Context, sessionID string, target engine.Coord) (result *FireResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "game.fire",
		attribute.String("session.id", sessionID),
		attribute.Int("shot.row", target.Row),
		attribute.Int("shot.col", target.Col),
	)
	defer func() { telemetry.End(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	// A computer turn cut short by a cancelled request is finished first.
	if _, err := s.runComputer(ctx, sess); err != nil {
		return nil, err
	}

	player, err := sess.Engine.Fire(target)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("shot.outcome", player.Shot.Outcome.String()))

	result = &FireResult{Player: player}
	result.Events = append(result.Events, shotEvents(player)...)
	messages := []string{player.Message}

	computer, err := s.runComputer(ctx, sess)
	result.Computer = computer
	for _, turn := range computer {
		result.Events = append(result.Events, shotEvents(turn)...)
		messages = append(messages, fmt.Sprintf("Computer fired at %s: %s", input.FormatCoord(turn.Shot.Coord), turn.Message))
	}
	sess.LastMessage = strings.Join(messages, "\n")
	if err != nil {
		return nil, err
	}

	result.GameState = s.buildView(sess)
	return result, nil
}

// runComputer steps the computer's shooter until it loses the turn or the game ends.
func (s *gameServiceImpl) runComputer(ctx context.Context, sess *Session) ([]engine.TurnResult, error) {
	var results []engine.TurnResult
	shooters := engine.Shooters{Computer: sess.Computer}
	for sess.Engine.Phase() == engine.PhaseActive && sess.Engine.Turn() == engine.Computer {
		turn, err := sess.Engine.Step(ctx, shooters)
		if err != nil {
			return results, fmt.Errorf("computer turn: %w", err)
		}
		results = append(results, turn)
	}
	return results, nil
}

func shotEvents(turn engine.TurnResult) []GameEvent {
	now := time.Now()
	c := turn.Shot.Coord
	eventType := "shot"
	if turn.Shot.Sunk {
		eventType = "sunk"
	}

	events := []GameEvent{{
		Type:      eventType,
		Side:      turn.Shooter,
		Message:   fmt.Sprintf("%s fired at %s: %s", turn.Shooter, input.FormatCoord(c), turn.Shot.Outcome),
		Timestamp: now,
		Coord:     &c,
	}}

	if turn.GameOver && turn.Winner != nil {
		eventType = "defeat"
		if *turn.Winner == engine.Player {
			eventType = "victory"
		}
		events = append(events, GameEvent{
			Type:      eventType,
			Side:      *turn.Winner,
			Message:   turn.Message,
			Timestamp: now,
		})
	} else if turn.TurnPassed {
		events = append(events, GameEvent{
			Type:      "turn",
			Side:      turn.Turn,
			Message:   fmt.Sprintf("%s to fire", turn.Turn),
			Timestamp: now,
		})
	}
	return events
}

// GetGameState returns the player's view of the game
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(sess), nil
}

// GetShotHistory returns paginated shot history for a session
func (s *gameServiceImpl) GetShotHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.History()
	total := len(history)

	// Set defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	shots := []engine.ShotRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				shots = append(shots, history[i])
			}
		} else {
			shots = append(shots, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Shots:       shots,
		TotalShots:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		GameState:      s.buildView(sess),
		GameConfig:     sess.Config,
	}
}

// buildView projects a session onto what the player may see. The computer's
// board stays fogged until the game is over.
func (s *gameServiceImpl) buildView(sess *Session) *GameView {
	eng := sess.Engine
	view := &GameView{
		SessionID:           sess.ID,
		Phase:               eng.Phase(),
		GameOver:            eng.IsGameOver(),
		OwnBoard:            eng.Snapshot(engine.Player),
		EnemyBoard:          eng.Fog(engine.Computer),
		Ships:               eng.Ships(engine.Player),
		RemainingSizes:      eng.RemainingSizes(engine.Player),
		PlayerShipsAfloat:   eng.ShipsAfloat(engine.Player),
		ComputerShipsAfloat: eng.ShipsAfloat(engine.Computer),
		Message:             sess.LastMessage,
	}
	if view.RemainingSizes == nil {
		view.RemainingSizes = []int{}
	}
	if eng.Phase() == engine.PhaseActive {
		turn := eng.Turn()
		view.Turn = &turn
	}
	if winner, ok := eng.Winner(); ok {
		view.Winner = &winner
		view.EnemyBoard = eng.Snapshot(engine.Computer)
	}
	for _, rec := range eng.History() {
		if rec.Shooter == engine.Player {
			view.ShotsFired++
		}
	}
	return view
}
