// Command autoplay plays the player's side of a game through the REST API.
// It creates a session with an automatically placed fleet (or resumes one)
// and fires until the game is over, printing every shot.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/battleship-game/game/engine"
	"github.com/wricardo/battleship-game/game/input"
	"github.com/wricardo/battleship-game/game/random"
	"github.com/wricardo/battleship-game/game/service"
	"github.com/wricardo/battleship-game/logging"
)

// Client talks to the game server on behalf of one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
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

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(rest string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + rest
}

// CreateSession starts a game with the player's fleet placed at random.
func (c *Client) CreateSession(ctx context.Context, configID string, seed *int64) (*service.GameView, error) {
	req := service.CreateSessionRequest{ConfigID: configID, Seed: seed, AutoPlace: true}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume attaches to an existing session, placing any ships still missing.
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.GameView, error) {
	c.sessionID = sessionID

	var view service.GameView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &view); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	if view.Phase != engine.PhasePlacementPlayer {
		return &view, nil
	}

	var placed service.PlacementResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/ships/auto"), nil, &placed); err != nil {
		return nil, fmt.Errorf("place fleet: %w", err)
	}
	return placed.GameState, nil
}

// Fire shoots at c and returns every shot it led to.
func (c *Client) Fire(ctx context.Context, target engine.Coord) (*service.FireResult, error) {
	var result service.FireResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/fire"), map[string]int{"row": target.Row, "col": target.Col}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// sweepShooter fires at the first untouched cell in row-major order.
type sweepShooter struct{}

func (sweepShooter) NextShot(ctx context.Context, target engine.Grid) (engine.Coord, error) {
	if err := ctx.Err(); err != nil {
		return engine.Coord{}, err
	}
	for row := 0; row < engine.BoardSize; row++ {
		for col := 0; col < engine.BoardSize; col++ {
			if !target[row][col].Terminal() {
				return engine.Coord{Row: row, Col: col}, nil
			}
		}
	}
	return engine.Coord{}, engine.ErrNoTargets
}

func newShooter(strategy string, seed int64) (engine.Shooter, error) {
	switch strategy {
	case "random":
		return engine.NewRandomShooter(engine.NewRand(seed)), nil
	case "sweep":
		return sweepShooter{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (use random or sweep)", strategy)
	}
}

// play fires until the game is over or maxShots shots were sent. It returns
// the last view of the game.
func play(ctx context.Context, client *Client, view *service.GameView, shooter engine.Shooter, maxShots int, delay time.Duration, w io.Writer) (*service.GameView, error) {
	for shots := 0; !view.GameOver; shots++ {
		if maxShots > 0 && shots >= maxShots {
			return view, fmt.Errorf("gave up after %d shots", shots)
		}

		target, err := shooter.NextShot(ctx, view.EnemyBoard)
		if err != nil {
			return view, err
		}
		result, err := client.Fire(ctx, target)
		if err != nil {
			return view, err
		}

		fmt.Fprintf(w, "You fire at %s: %s\n", input.FormatCoord(target), result.Player.Message)
		for _, turn := range result.Computer {
			fmt.Fprintf(w, "Computer fires at %s: %s\n", input.FormatCoord(turn.Shot.Coord), turn.Message)
		}
		view = result.GameState

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return view, ctx.Err()
			}
		}
	}
	return view, nil
}

func run(ctx context.Context, cmd *cli.Command, w io.Writer, logger *slog.Logger) error {
	seed := cmd.Int64("seed")
	if seed == 0 {
		var err error
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}
	shooter, err := newShooter(cmd.String("strategy"), seed)
	if err != nil {
		return err
	}

	logger.Info("connecting to game server", "url", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	var view *service.GameView
	if id := cmd.String("continue"); id != "" {
		logger.Info("🔄 resuming session", "session", id)
		view, err = client.Resume(ctx, id)
	} else {
		view, err = client.CreateSession(ctx, cmd.String("config"), &seed)
	}
	if err != nil {
		return err
	}
	logger.Info("✨ playing session", "session", client.sessionID, "strategy", cmd.String("strategy"), "seed", seed)

	view, err = play(ctx, client, view, shooter, cmd.Int("max-shots"), cmd.Duration("delay"), w)
	if err != nil {
		return fmt.Errorf("session %s: %w", client.sessionID, err)
	}

	if view.Winner != nil && *view.Winner == engine.Player {
		logger.Info("🎉 VICTORY!", "session", client.sessionID, "shots", view.ShotsFired)
	} else {
		logger.Info("💀 DEFEAT", "session", client.sessionID, "shots", view.ShotsFired)
	}
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)

	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play the player's side of a game through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Rule preset for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "strategy", Value: "random", Usage: "random or sweep"},
			&cli.Int64Flag{Name: "seed", Usage: "Seed for the session and the random strategy (0 picks one)"},
			&cli.IntFlag{Name: "max-shots", Value: 200, Usage: "Maximum shots before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between shots"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, os.Stdout, logger)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("autoplay failed", "error", err)
		os.Exit(1)
	}
}
