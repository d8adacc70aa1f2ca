package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/battleship-game/game/engine"
	"github.com/wricardo/battleship-game/game/input"
	"github.com/wricardo/battleship-game/game/render"
	"github.com/wricardo/battleship-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Battleship",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Battleship - MCP Interface

You play one side of a 10x10 naval battle against the computer. Every call
is proxied to the REST API server.

FLOW:
1. create_session (auto_place=true skips manual placement)
2. place_ship for each fleet size, or auto_place
3. fire until one fleet is sunk

AVAILABLE TOOLS:
- create_session, list_sessions, get_session
- game_state: both boards, the enemy one under fog
- place_ship: one ship, e.g. size=4 placement="H09"
- auto_place: place the rest of your fleet at random
- fire: one shot, e.g. coord="B4"; the computer answers in the same call
- shot_history: past shots of both sides
- list_configs: rule presets
- game_instructions: full rules`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))

	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session"),
		mcp.WithString("config_id", mcp.Description("Rule preset to use (see list_configs). Defaults to classic")),
		mcp.WithNumber("seed", mcp.Description("Fixes the game's randomness for a reproducible game")),
		mcp.WithBoolean("auto_place", mcp.Description("Place your fleet at random and start firing right away")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionID,
	), c.handleGetSession)

	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Show your board, the fogged enemy board, and whose turn it is"),
		sessionID,
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("place_ship",
		mcp.WithDescription("Place one of your ships. Ships may not overlap or touch, not even diagonally"),
		sessionID,
		mcp.WithNumber("size", mcp.Required(), mcp.Description("Ship length: one of the remaining sizes (4, 3, 2 or 1)")),
		mcp.WithString("placement", mcp.Description("Orientation then bow cell, row first: H09, V85, \"h B4\"")),
		mcp.WithNumber("row", mcp.Description("Bow row 0-9, when placement is not given")),
		mcp.WithNumber("col", mcp.Description("Bow column 0-9, when placement is not given")),
		mcp.WithString("orientation", mcp.Enum("horizontal", "vertical"), mcp.Description("Used with row and col. Defaults to horizontal")),
	), c.handlePlaceShip)

	c.mcpServer.AddTool(mcp.NewTool("auto_place",
		mcp.WithDescription("Place the rest of your fleet at random and start the game"),
		sessionID,
	), c.handleAutoPlace)

	c.mcpServer.AddTool(mcp.NewTool("fire",
		mcp.WithDescription("Fire at a cell of the enemy board. A hit lets you fire again; after a miss the computer fires until it misses"),
		sessionID,
		mcp.WithString("coord", mcp.Description("Target cell, row first: B4, 34 or \"3,4\"")),
		mcp.WithNumber("row", mcp.Description("Target row 0-9, when coord is not given")),
		mcp.WithNumber("col", mcp.Description("Target column 0-9, when coord is not given")),
	), c.handleFire)

	c.mcpServer.AddTool(mcp.NewTool("shot_history",
		mcp.WithDescription("Get the shot history of a session"),
		sessionID,
		mcp.WithNumber("page", mcp.Description("Page number")),
		mcp.WithNumber("limit", mcp.Description("Items per page")),
		mcp.WithString("order", mcp.Enum("asc", "desc"), mcp.Description("Oldest or newest first")),
	), c.handleShotHistory)

	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available rule presets"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get the complete rules and notation"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(id string, rest ...string) string {
	return "/api/sessions/" + url.PathEscape(id) + strings.Join(rest, "")
}

// hasArg reports whether the caller supplied key at all, so zero values can
// be told apart from missing ones.
func hasArg(request mcp.CallToolRequest, key string) bool {
	_, ok := request.GetArguments()[key]
	return ok
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := service.CreateSessionRequest{
		ConfigID:  request.GetString("config_id", ""),
		AutoPlace: request.GetBool("auto_place", false),
	}
	if hasArg(request, "seed") {
		seed := int64(request.GetInt("seed", 0))
		body.Seed = &seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Created session: %s\nConfig: %s\nSeed: %d\n\n", session.ID, session.ConfigName, session.Seed)
	if session.GameState != nil {
		sb.WriteString(formatGameView(session.GameState))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := "unknown"
		if s.GameState != nil {
			phase = s.GameState.Phase.String()
		}
		fmt.Fprintf(&sb, "- %s (Config: %s, Phase: %s, Created: %s)\n",
			s.ID, s.ConfigName, phase, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(id), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.GameView
	if err := c.apiCall(ctx, "GET", sessionPath(id, "/state"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handlePlaceShip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"size": request.GetInt("size", 0),
	}
	if placement := request.GetString("placement", ""); placement != "" {
		body["placement"] = placement
	} else {
		if !hasArg(request, "row") || !hasArg(request, "col") {
			return mcp.NewToolResultError("either placement or row and col are required"), nil
		}
		body["row"] = request.GetInt("row", 0)
		body["col"] = request.GetInt("col", 0)
		if o := request.GetString("orientation", ""); o != "" {
			body["orientation"] = o
		}
	}

	var result service.PlacementResult
	if err := c.apiCall(ctx, "POST", sessionPath(id, "/ships"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPlacement(&result)), nil
}

func (c *Client) handleAutoPlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.PlacementResult
	if err := c.apiCall(ctx, "POST", sessionPath(id, "/ships/auto"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPlacement(&result)), nil
}

func (c *Client) handleFire(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{}
	if coord := request.GetString("coord", ""); coord != "" {
		body["coord"] = coord
	} else {
		if !hasArg(request, "row") || !hasArg(request, "col") {
			return mcp.NewToolResultError("either coord or row and col are required"), nil
		}
		body["row"] = request.GetInt("row", 0)
		body["col"] = request.GetInt("col", 0)
	}

	var result service.FireResult
	if err := c.apiCall(ctx, "POST", sessionPath(id, "/fire"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFireResult(&result)), nil
}

func (c *Client) handleShotHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(id, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&sb, "• %s (config_id: %s)\n  %s\n  Hit keeps turn: %t, Moat reveal: %t\n\n",
			config.Name, config.ConfigID, config.Description, config.HitRetainsTurn, config.MoatReveal)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Battleship - Complete Instructions

GAME OBJECTIVE:
Sink every ship of the computer's fleet before it sinks yours.

THE BOARD:
10x10 cells. Rows are A-J (or 0-9), columns are 0-9. Coordinates are
always row first: B4 and 14 both mean row 1, column 4.

THE FLEET:
Each side has ten ships, twenty cells in total:
• one 4-cell ship
• two 3-cell ships
• three 2-cell ships
• four 1-cell ships

PLACEMENT RULES:
• Ships are straight lines, horizontal (extending right) or vertical
  (extending down) from the bow cell
• Ships must be fully on the board
• Ships may not overlap
• Ships may not touch, not even at a corner
Use place_ship with placement="H09" (horizontal, row 0, column 9) or call
auto_place to have the rest placed at random.

FIRING:
• fire at a cell of the enemy board
• Hit: you fire again (in the classic preset)
• Miss: the turn passes; the computer fires until it misses, all within
  the same fire call
• Firing at a cell already fired upon changes nothing and keeps your turn
• When a ship sinks, every untouched cell around it is revealed as a miss,
  since no other ship can be there

GRID LEGEND:
.  untouched water
S  your ship
X  hit
O  miss

VICTORY CONDITIONS:
The first side to sink the whole enemy fleet wins. The enemy board is
revealed once the game is over.

Good luck, admiral!`

// Formatting helpers

func formatGameView(view *service.GameView) string {
	if view == nil {
		return "No game state available"
	}

	var sb strings.Builder
	sb.WriteString(render.SideBySide("Your fleet", view.OwnBoard, "Enemy waters", view.EnemyBoard))
	sb.WriteString(render.Legend())
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Phase: %s\n", view.Phase)
	switch {
	case view.Winner != nil && *view.Winner == engine.Player:
		sb.WriteString("🎉 VICTORY!\n")
	case view.Winner != nil:
		sb.WriteString("💀 DEFEAT\n")
	case view.Turn != nil:
		fmt.Fprintf(&sb, "Turn: %s\n", *view.Turn)
	}
	if len(view.RemainingSizes) > 0 {
		fmt.Fprintf(&sb, "Ships left to place: %v\n", view.RemainingSizes)
	}
	fmt.Fprintf(&sb, "Ships afloat: you %d, enemy %d\n", view.PlayerShipsAfloat, view.ComputerShipsAfloat)
	fmt.Fprintf(&sb, "Shots fired: %d\n", view.ShotsFired)
	if view.Message != "" {
		fmt.Fprintf(&sb, "\n%s\n", view.Message)
	}
	return sb.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\n", session.ID)
	fmt.Fprintf(&sb, "Config: %s\n", session.ConfigName)
	fmt.Fprintf(&sb, "Seed: %d\n", session.Seed)
	fmt.Fprintf(&sb, "Created: %s\n", session.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Last accessed: %s\n\n", session.LastAccessedAt.Format(time.RFC3339))
	sb.WriteString(formatGameView(session.GameState))
	return sb.String()
}

func formatPlacement(result *service.PlacementResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✓ %s\n\n", result.Message)
	sb.WriteString(formatGameView(result.GameState))
	return sb.String()
}

func formatTurn(turn engine.TurnResult) string {
	who := "You"
	if turn.Shooter == engine.Computer {
		who = "Computer"
	}
	line := fmt.Sprintf("%s fired at %s: %s", who, input.FormatCoord(turn.Shot.Coord), turn.Shot.Outcome)
	if turn.Shot.Sunk {
		line += fmt.Sprintf(", %d-cell ship sunk", turn.Shot.ShipSize)
	}
	return line
}

func formatFireResult(result *service.FireResult) string {
	var sb strings.Builder
	sb.WriteString(formatTurn(result.Player))
	sb.WriteByte('\n')
	for _, turn := range result.Computer {
		sb.WriteString(formatTurn(turn))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(formatGameView(result.GameState))
	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Shot History (Page %d/%d, Total: %d shots)\n\n",
		history.Page, history.TotalPages, history.TotalShots)

	for _, shot := range history.Shots {
		fmt.Fprintf(&sb, "#%d %-8s %s %s", shot.Seq, shot.Shooter, input.FormatCoord(shot.Coord), shot.Outcome)
		if shot.Sunk {
			fmt.Fprintf(&sb, " (sunk %d-cell ship)", shot.ShipSize)
		}
		sb.WriteByte('\n')
	}

	if history.HasPrevious || history.HasNext {
		sb.WriteString("\n")
		if history.HasPrevious {
			sb.WriteString("← Previous page available  ")
		}
		if history.HasNext {
			sb.WriteString("Next page available →")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
