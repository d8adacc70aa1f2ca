// Command battleship runs the Battleship game server.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server, starting an internal HTTP API if none is reachable
//  3. "play" – plays one game against the computer in the terminal
//
// Settings come from the environment (and an optional .env file); flags
// override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/battleship-game/api"
	"github.com/wricardo/battleship-game/game/config"
	"github.com/wricardo/battleship-game/game/console"
	"github.com/wricardo/battleship-game/game/engine"
	"github.com/wricardo/battleship-game/game/random"
	"github.com/wricardo/battleship-game/game/service"
	"github.com/wricardo/battleship-game/game/session"
	"github.com/wricardo/battleship-game/logging"
	"github.com/wricardo/battleship-game/settings"
	"github.com/wricardo/battleship-game/telemetry"
	"github.com/wricardo/battleship-game/transport/mcp"
	"github.com/wricardo/battleship-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Battleship Game Server"
)

func main() {
	if err := newCommand(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCommand builds the command tree. Logs always go to stderr so the MCP
// stdio protocol owns stdout.
func newCommand(stdin io.Reader, stdout io.Writer) *cli.Command {
	var (
		cfg    settings.Settings
		logger *slog.Logger
	)

	// setup runs inside each action so flags given after the command name
	// are seen too.
	setup := func(cmd *cli.Command) error {
		loaded, err := settings.LoadDotEnv()
		if err != nil {
			return err
		}
		cfg, err = resolveSettings(cmd)
		if err != nil {
			return err
		}
		logger = logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
		if loaded {
			logger.Debug("loaded environment variables from .env file")
		}
		return nil
	}

	serve := func(ctx context.Context, cmd *cli.Command) error {
		if err := setup(cmd); err != nil {
			return err
		}
		return runHTTPServer(ctx, cfg, logger)
	}

	return &cli.Command{
		Name:    "battleship",
		Usage:   AppName,
		Version: Version,
		Flags:   globalFlags(),
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serve,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server against an external or internal HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Usage: "Base URL of a running API server (or API_URL env var)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := setup(cmd); err != nil {
						return err
					}
					if cmd.IsSet("api-url") {
						cfg.APIURL = cmd.String("api-url")
					}
					return runStdioMCP(ctx, cfg, logger)
				},
			},
			{
				Name:  "play",
				Usage: "Play one game against the computer in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "classic", Usage: "Rule preset to play with"},
					&cli.Int64Flag{Name: "seed", Usage: "Seed for a reproducible game (0 picks one)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := setup(cmd); err != nil {
						return err
					}
					return runConsoleGame(ctx, cfg, cmd.String("config"), cmd.Int64("seed"), stdin, stdout, logger)
				},
			},
		},
	}
}

// globalFlags override the matching settings for every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
		&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
		&cli.StringFlag{Name: "config-dir", Usage: "Directory containing game configurations"},
		&cli.StringFlag{Name: "default-config", Usage: "Preset for sessions created without one"},
		&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)"},
	}
}

// resolveSettings loads settings from the environment and applies any flags
// given on the command line.
func resolveSettings(cmd *cli.Command) (settings.Settings, error) {
	s, err := settings.Load()
	if err != nil {
		return settings.Settings{}, err
	}

	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = cmd.Int("port")
	}
	if cmd.IsSet("config-dir") {
		s.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("default-config") {
		s.DefaultConfig = cmd.String("default-config")
	}
	if cmd.Bool("debug") {
		s.LogLevel = "debug"
	}
	if cmd.Bool("ngrok") {
		s.Ngrok.Enabled = true
	}
	if cmd.IsSet("ngrok-auth") {
		s.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	return s, s.Validate()
}

// initializeServices wires the config and session managers into the game
// service. A non-empty defaultConfig replaces the manager's default preset.
func initializeServices(configDir, defaultConfig string) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if defaultConfig != "" {
		if err := configManager.SetDefault(defaultConfig); err != nil {
			return nil, nil, fmt.Errorf("failed to set default config: %w", err)
		}
	}

	sessionManager := session.NewManager()
	return service.NewGameService(sessionManager, configManager), sessionManager, nil
}

// newHandler combines the REST API with the /mcp JSON-RPC endpoint.
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer serves the API, WebSocket hub and /mcp endpoint until an
// interrupt, with an optional public ngrok tunnel.
func runHTTPServer(ctx context.Context, s settings.Settings, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "battleship", s.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	gameService, sessions, err := initializeServices(s.ConfigDir, s.DefaultConfig)
	if err != nil {
		return err
	}
	go sessions.RunCleanup(ctx, s.CleanupInterval, s.SessionTTL, logger)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	addr := s.Addr()
	apiServer := api.NewServer(gameService, hub, logger)
	handler := newHandler(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ErrorLog:     logging.StdLogger(logger, logging.LevelError),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp",
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, s.Ngrok, handler, logger)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx ends.
func runNgrokTunnel(ctx context.Context, n settings.Ngrok, handler http.Handler, logger *slog.Logger) {
	authToken := n.Token()
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if n.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(n.Domain))
		logger.Info("using custom ngrok domain", "domain", n.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("🚀 ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp",
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// apiReachable reports whether an API server answers its health check at baseURL.
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves a private API on a random loopback port and
// returns its base URL.
func startInternalAPI(ctx context.Context, s settings.Settings, logger *slog.Logger) (string, func(), error) {
	gameService, sessions, err := initializeServices(s.ConfigDir, s.DefaultConfig)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	go sessions.RunCleanup(ctx, s.CleanupInterval, s.SessionTTL, logger)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	httpServer := &http.Server{
		Handler:  api.NewServer(gameService, hub, logger),
		ErrorLog: logging.StdLogger(logger, logging.LevelError),
	}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", "error", err)
		}
	}()

	stop := func() {
		cancel()
		httpServer.Close()
	}
	return "http://" + listener.Addr().String(), stop, nil
}

// runStdioMCP runs an MCP stdio server. It uses the configured or local API
// when one answers, and otherwise starts an internal one.
func runStdioMCP(ctx context.Context, s settings.Settings, logger *slog.Logger) error {
	baseURL := s.APIURL
	if baseURL == "" {
		baseURL = "http://" + s.Addr()
	}

	logger.Info("checking for external API server", "url", baseURL)
	if apiReachable(ctx, baseURL) {
		logger.Info("MCP stdio server ready (using external HTTP server)", "url", baseURL)
	} else {
		if s.APIURL != "" {
			return fmt.Errorf("API server at %s is not reachable", s.APIURL)
		}

		internalURL, stopInternal, err := startInternalAPI(ctx, s, logger)
		if err != nil {
			return err
		}
		defer stopInternal()

		baseURL = internalURL
		logger.Info("MCP stdio server ready (using internal HTTP server)", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// loadGameConfig reads the named preset, falling back to the built-in rules
// when the config directory does not exist.
func loadGameConfig(configDir, name string, logger *slog.Logger) (*engine.GameConfig, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		logger.Warn("config directory unavailable, using built-in rules", "dir", configDir, "error", err)
		return engine.DefaultGameConfig(), nil
	}
	return configManager.LoadConfig(name)
}

// runConsoleGame plays one game on stdin and stdout.
func runConsoleGame(ctx context.Context, s settings.Settings, configName string, seed int64, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameConfig, err := loadGameConfig(s.ConfigDir, configName, logger)
	if err != nil {
		return err
	}

	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	runner, err := console.NewRunner(stdin, stdout, gameConfig, seed, logger)
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}
