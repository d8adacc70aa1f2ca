// Package settings loads process settings from the environment, after an
// optional .env file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings configures the server process. Command-line flags override these.
type Settings struct {
	Host      string `env:"HOST" envDefault:"localhost"`
	Port      int    `env:"PORT" envDefault:"8080"`
	ConfigDir string `env:"CONFIG_DIR" envDefault:"configs"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	// DefaultConfig names the preset used when a session asks for none.
	// Empty keeps "classic", or the first preset found.
	DefaultConfig string `env:"DEFAULT_CONFIG"`

	// SessionTTL is how long an idle session is kept before cleanup.
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// APIURL points the MCP bridge at an already running server. Empty
	// means start an internal one.
	APIURL string `env:"API_URL"`

	Ngrok Ngrok `envPrefix:"NGROK_"`

	// OTelEndpoint enables trace export when set.
	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Ngrok holds the optional tunnel settings
type Ngrok struct {
	Enabled   bool   `env:"ENABLED"`
	AuthToken string `env:"AUTHTOKEN"`
	// AltAuthToken is the NGROK_AUTH_TOKEN spelling, used when AUTHTOKEN is unset.
	AltAuthToken string `env:"AUTH_TOKEN"`
	Domain       string `env:"DOMAIN"`
}

// Token returns the configured auth token under either spelling.
func (n Ngrok) Token() string {
	if n.AuthToken != "" {
		return n.AuthToken
	}
	return n.AltAuthToken
}

// LoadDotEnv loads the given files (".env" when none) into the environment
// without overriding variables already set. It reports whether anything was
// loaded; missing files are not an error.
func LoadDotEnv(files ...string) (bool, error) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load dotenv: %w", err)
	}
	return true, nil
}

// Load parses Settings from the environment and validates them.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the values that have no safe interpretation.
func (s Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("settings: port %d out of range", s.Port)
	}
	if s.SessionTTL < 0 {
		return fmt.Errorf("settings: session TTL must not be negative")
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("settings: cleanup interval must be positive")
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
