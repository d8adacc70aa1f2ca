package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/battleship-game/game/config"
	"github.com/wricardo/battleship-game/game/engine"
	"github.com/wricardo/battleship-game/game/input"
	"github.com/wricardo/battleship-game/game/service"
	"github.com/wricardo/battleship-game/game/session"
	"github.com/wricardo/battleship-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc  func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
	GetSessionFunc     func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc   func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc  func(ctx context.Context, sessionID string) error
	PlaceShipFunc      func(ctx context.Context, sessionID string, req service.PlaceShipRequest) (*service.PlacementResult, error)
	AutoPlaceFunc      func(ctx context.Context, sessionID string) (*service.PlacementResult, error)
	FireFunc           func(ctx context.Context, sessionID string, target engine.Coord) (*service.FireResult, error)
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*service.GameView, error)
	GetShotHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	ListConfigsFunc    func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc     func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc     func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &service.SessionInfo{ID: "ab12", ConfigName: req.ConfigID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) PlaceShip(ctx context.Context, sessionID string, req service.PlaceShipRequest) (*service.PlacementResult, error) {
	if m.PlaceShipFunc != nil {
		return m.PlaceShipFunc(ctx, sessionID, req)
	}
	return &service.PlacementResult{ShipID: 1, GameState: &service.GameView{SessionID: sessionID}}, nil
}

func (m *MockGameService) AutoPlace(ctx context.Context, sessionID string) (*service.PlacementResult, error) {
	if m.AutoPlaceFunc != nil {
		return m.AutoPlaceFunc(ctx, sessionID)
	}
	return &service.PlacementResult{GameState: &service.GameView{SessionID: sessionID, Phase: engine.PhaseActive}}, nil
}

func (m *MockGameService) Fire(ctx context.Context, sessionID string, target engine.Coord) (*service.FireResult, error) {
	if m.FireFunc != nil {
		return m.FireFunc(ctx, sessionID, target)
	}
	return &service.FireResult{
		Player:    engine.TurnResult{Shooter: engine.Player, Shot: engine.ShotResult{Coord: target, Outcome: engine.OutcomeMiss}},
		GameState: &service.GameView{SessionID: sessionID},
	}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*service.GameView, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &service.GameView{SessionID: sessionID}, nil
}

func (m *MockGameService) GetShotHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetShotHistoryFunc != nil {
		return m.GetShotHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Shots: []engine.ShotRecord{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	config := engine.DefaultGameConfig()
	config.Name = configName
	return config, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestCreateSession(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		var got service.CreateSessionRequest
		server := setupTestServer(&MockGameService{
			CreateSessionFunc: func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
				got = req
				return &service.SessionInfo{ID: "ab12", ConfigName: "classic"}, nil
			},
		})

		w := serve(server, makeRequest("POST", "/api/sessions", nil))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if got.ConfigID != "" || got.Seed != nil || got.AutoPlace {
			t.Errorf("Expected empty request, got %+v", got)
		}

		var info service.SessionInfo
		parseResponse(t, w, &info)
		if info.ID != "ab12" {
			t.Errorf("Expected session ab12, got %s", info.ID)
		}
	})

	t.Run("seed and auto place", func(t *testing.T) {
		var got service.CreateSessionRequest
		server := setupTestServer(&MockGameService{
			CreateSessionFunc: func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
				got = req
				return &service.SessionInfo{ID: "cd34"}, nil
			},
		})

		w := serve(server, makeRequest("POST", "/api/sessions", `{"config_id":"alternating","seed":42,"auto_place":true}`))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if got.ConfigID != "alternating" || got.Seed == nil || *got.Seed != 42 || !got.AutoPlace {
			t.Errorf("Unexpected request %+v", got)
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		server := setupTestServer(&MockGameService{
			CreateSessionFunc: func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
				return nil, fmt.Errorf("%w: 'nope'", service.ErrConfigNotFound)
			},
		})

		w := serve(server, makeRequest("POST", "/api/sessions", `{"config_id":"nope"}`))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := serve(server, makeRequest("POST", "/api/sessions", `{"config_id":`))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func() []*service.SessionInfo {
		return []*service.SessionInfo{
			{ID: "aaaa", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-1 * time.Minute)},
			{ID: "bbbb", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now.Add(-30 * time.Minute)},
			{ID: "cccc", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now},
		}
	}
	server := setupTestServer(&MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return sessions(), nil
		},
	})

	tests := []struct {
		name  string
		query string
		want  []string
		total int
	}{
		{"default sorts by access desc", "", []string{"cccc", "aaaa", "bbbb"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"aaaa", "cccc", "bbbb"}, 3},
		{"limit", "?limit=2", []string{"cccc", "aaaa"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, resp.Total)
			}
			if resp.Count != len(tt.want) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.want), resp.Count)
			}
			for i, id := range tt.want {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	server := setupTestServer(&MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: sessionID, Seed: 7}, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	if info.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", info.Seed)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/zzzz", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	deleted := ""
	server := setupTestServer(&MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "gone" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			deleted = sessionID
			return nil
		},
	})

	w := serve(server, makeRequest("DELETE", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if deleted != "ab12" {
		t.Errorf("Expected ab12 deleted, got %q", deleted)
	}

	w = serve(server, makeRequest("DELETE", "/api/sessions/gone", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestPlaceShip(t *testing.T) {
	var got service.PlaceShipRequest
	server := setupTestServer(&MockGameService{
		PlaceShipFunc: func(ctx context.Context, sessionID string, req service.PlaceShipRequest) (*service.PlacementResult, error) {
			got = req
			switch req.Row {
			case 9:
				return nil, &engine.PlacementError{Kind: engine.OutOfBounds, Cell: engine.Coord{Row: 9, Col: 10}}
			case 8:
				return nil, engine.ErrWrongPhase
			}
			return &service.PlacementResult{ShipID: 1, GameState: &service.GameView{SessionID: sessionID}}, nil
		},
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       service.PlaceShipRequest
	}{
		{"explicit fields", `{"size":4,"row":2,"col":3,"orientation":"vertical"}`, http.StatusOK,
			service.PlaceShipRequest{Size: 4, Row: 2, Col: 3, Orientation: engine.Vertical}},
		{"orientation defaults to horizontal", `{"size":1,"row":0,"col":0}`, http.StatusOK,
			service.PlaceShipRequest{Size: 1, Row: 0, Col: 0, Orientation: engine.Horizontal}},
		{"placement token", `{"size":3,"placement":"V B4"}`, http.StatusOK,
			service.PlaceShipRequest{Size: 3, Row: 1, Col: 4, Orientation: engine.Vertical}},
		{"compact token", `{"size":2,"placement":"H09"}`, http.StatusOK,
			service.PlaceShipRequest{Size: 2, Row: 0, Col: 9, Orientation: engine.Horizontal}},
		{"missing coordinates", `{"size":2}`, http.StatusBadRequest, service.PlaceShipRequest{}},
		{"bad orientation", `{"size":2,"row":1,"col":1,"orientation":"diagonal"}`, http.StatusBadRequest, service.PlaceShipRequest{}},
		{"bad token", `{"size":2,"placement":"Q11"}`, http.StatusBadRequest, service.PlaceShipRequest{}},
		{"rejected placement", `{"size":2,"row":9,"col":9}`, http.StatusBadRequest, service.PlaceShipRequest{}},
		{"wrong phase", `{"size":2,"row":8,"col":0}`, http.StatusConflict, service.PlaceShipRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = service.PlaceShipRequest{}
			w := serve(server, makeRequest("POST", "/api/sessions/ab12/ships", tt.body))
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && got != tt.want {
				t.Errorf("Expected request %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAutoPlace(t *testing.T) {
	called := false
	server := setupTestServer(&MockGameService{
		AutoPlaceFunc: func(ctx context.Context, sessionID string) (*service.PlacementResult, error) {
			if called {
				return nil, engine.ErrWrongPhase
			}
			called = true
			return &service.PlacementResult{Message: "ready", GameState: &service.GameView{Phase: engine.PhaseActive}}, nil
		},
	})

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/ships/auto", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var result service.PlacementResult
	parseResponse(t, w, &result)
	if result.GameState.Phase != engine.PhaseActive {
		t.Errorf("Expected active phase, got %s", result.GameState.Phase)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/ab12/ships/auto", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 on second auto place, got %d", w.Code)
	}
}

func TestFire(t *testing.T) {
	var got engine.Coord
	server := setupTestServer(&MockGameService{
		FireFunc: func(ctx context.Context, sessionID string, target engine.Coord) (*service.FireResult, error) {
			got = target
			if sessionID == "done" {
				return nil, engine.ErrGameOver
			}
			return &service.FireResult{
				Player:    engine.TurnResult{Shooter: engine.Player, Shot: engine.ShotResult{Coord: target, Outcome: engine.OutcomeHit}},
				GameState: &service.GameView{SessionID: sessionID},
			}, nil
		},
	})

	tests := []struct {
		name       string
		session    string
		body       string
		wantStatus int
		want       engine.Coord
	}{
		{"row and col", "ab12", `{"row":3,"col":4}`, http.StatusOK, engine.Coord{Row: 3, Col: 4}},
		{"letter coord", "ab12", `{"coord":"B4"}`, http.StatusOK, engine.Coord{Row: 1, Col: 4}},
		{"compact coord", "ab12", `{"coord":"34"}`, http.StatusOK, engine.Coord{Row: 3, Col: 4}},
		{"missing target", "ab12", `{}`, http.StatusBadRequest, engine.Coord{}},
		{"bad coord", "ab12", `{"coord":"Z9"}`, http.StatusBadRequest, engine.Coord{}},
		{"malformed body", "ab12", `{"row":`, http.StatusBadRequest, engine.Coord{}},
		{"game over", "done", `{"row":0,"col":0}`, http.StatusConflict, engine.Coord{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = engine.Coord{}
			w := serve(server, makeRequest("POST", "/api/sessions/"+tt.session+"/fire", tt.body))
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got != tt.want {
				t.Errorf("Expected target %s, got %s", tt.want, got)
			}
			var result service.FireResult
			parseResponse(t, w, &result)
			if result.Player.Shot.Outcome != engine.OutcomeHit {
				t.Errorf("Expected hit, got %s", result.Player.Shot.Outcome)
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	var got service.HistoryOptions
	server := setupTestServer(&MockGameService{
		GetShotHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Shots: []engine.ShotRecord{}, Page: opts.Page, PageSize: opts.Limit}, nil
		},
	})

	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=x&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		w := serve(server, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if got != tt.want {
			t.Errorf("Query %q: expected %+v, got %+v", tt.query, tt.want, got)
		}
	}
}

func TestGetGameState(t *testing.T) {
	server := setupTestServer(&MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*service.GameView, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			view := &service.GameView{SessionID: sessionID, Phase: engine.PhaseActive}
			view.EnemyBoard[0][1] = engine.CellMiss
			return view, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var view service.GameView
	parseResponse(t, w, &view)
	if view.EnemyBoard[0][1] != engine.CellMiss {
		t.Errorf("Expected miss at (0,1), got %s", view.EnemyBoard[0][1])
	}

	w = serve(server, makeRequest("GET", "/api/sessions/zzzz/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestConfigs(t *testing.T) {
	var savedID string
	var saved *engine.GameConfig
	server := setupTestServer(&MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "Classic", MoatReveal: true, HitRetainsTurn: true}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "classic" {
				return nil, service.ErrConfigNotFound
			}
			return engine.DefaultGameConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, config *engine.GameConfig) error {
			if err := engine.ValidateGameConfig(config); err != nil {
				return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
			}
			savedID, saved = configName, config
			return nil
		},
	})

	t.Run("list", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/configs", nil))
		var list []*service.ConfigInfo
		parseResponse(t, w, &list)
		if len(list) != 1 || list[0].ConfigID != "classic" || !list[0].MoatReveal {
			t.Errorf("Unexpected config list %+v", list)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/configs/classic", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		w = serve(server, makeRequest("GET", "/api/configs/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		config := engine.DefaultGameConfig()
		config.Name = "Quick Match"
		config.HitRetainsTurn = false

		w := serve(server, makeRequest("POST", "/api/configs", config))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if savedID != "quick_match" {
			t.Errorf("Expected config id quick_match, got %q", savedID)
		}
		if saved == nil || saved.HitRetainsTurn {
			t.Errorf("Expected hit_retains_turn false to be saved, got %+v", saved)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		w := serve(server, makeRequest("POST", "/api/configs", `{"config_id":"broken","name":"Broken"}`))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %q", resp["status"])
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrConfigNotFound, http.StatusNotFound},
		{service.ErrInvalidConfig, http.StatusBadRequest},
		{&engine.PlacementError{Kind: engine.Adjacent}, http.StatusBadRequest},
		{engine.ErrFleetFull, http.StatusBadRequest},
		{fmt.Errorf("%w: size 1 at (0,0)", engine.ErrFleetBlocked), http.StatusBadRequest},
		{engine.ErrPlacementExhausted, http.StatusConflict},
		{engine.ErrInvalidShipSize, http.StatusBadRequest},
		{input.ErrInvalidCoord, http.StatusBadRequest},
		{engine.ErrWrongPhase, http.StatusConflict},
		{engine.ErrGameOver, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, expected %d", tt.err, got, tt.want)
		}
	}
}

func TestWebSocket(t *testing.T) {
	mock := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*service.GameView, error) {
			if sessionID != "ab12" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.GameView{SessionID: sessionID, Message: "welcome"}, nil
		},
	}

	t.Run("without hub", func(t *testing.T) {
		w := serve(setupTestServer(mock), makeRequest("GET", "/ws?session=ab12", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	hub := websocket.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	server := NewServer(mock, hub, nil)

	t.Run("missing session", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/ws?session=zzzz", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("initial state", func(t *testing.T) {
		ts := httptest.NewServer(server)
		defer ts.Close()

		conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session=ab12", nil)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(time.Second))
		var message websocket.Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		if message.GameState == nil || message.GameState.Message != "welcome" {
			t.Errorf("Expected initial state, got %+v", message)
		}
	})
}

// TestFullGame plays a seeded game end to end through the HTTP surface.
func TestFullGame(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configs)
	server := NewServer(gameService, nil, nil)

	w := serve(server, makeRequest("POST", "/api/sessions", `{"seed":11,"auto_place":true}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	if info.GameState.Phase != engine.PhaseActive {
		t.Fatalf("Expected active phase after auto place, got %s", info.GameState.Phase)
	}

	var last service.FireResult
	gameOver := false
	for row := 0; row < engine.BoardSize && !gameOver; row++ {
		for col := 0; col < engine.BoardSize && !gameOver; col++ {
			body := fmt.Sprintf(`{"row":%d,"col":%d}`, row, col)
			w := serve(server, makeRequest("POST", "/api/sessions/"+info.ID+"/fire", body))
			if w.Code != http.StatusOK {
				t.Fatalf("Fire at (%d,%d): expected status 200, got %d: %s", row, col, w.Code, w.Body.String())
			}
			last = service.FireResult{}
			parseResponse(t, w, &last)
			gameOver = last.GameState.GameOver
		}
	}

	if !gameOver || last.GameState.Winner == nil {
		t.Fatalf("Expected game over with a winner, got %+v", last.GameState)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/"+info.ID+"/fire", `{"row":0,"col":0}`))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 after game over, got %d", w.Code)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/"+info.ID+"/history?limit=500", nil))
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.TotalShots == 0 || len(history.Shots) != history.TotalShots {
		t.Errorf("Expected full history, got %d of %d", len(history.Shots), history.TotalShots)
	}
}
