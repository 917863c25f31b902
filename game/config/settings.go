package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are the process-level options read from the environment.
// Command-line flags override them in main.
type Settings struct {
	Port        int           `env:"PORT" envDefault:"8080"`
	Host        string        `env:"HOST" envDefault:"localhost"`
	ConfigDir   string        `env:"CONFIG_DIR" envDefault:"configs"`
	CatalogPath string        `env:"CATALOG_PATH"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"LOG_FORMAT" envDefault:"text"`

	Ngrok NgrokSettings `envPrefix:"NGROK_"`
}

// NgrokSettings configure the optional public tunnel
type NgrokSettings struct {
	Enabled   bool   `env:"ENABLED"`
	AuthToken string `env:"AUTHTOKEN"`
	Domain    string `env:"DOMAIN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return nil, fmt.Errorf("parse env: PORT must be between 1 and 65535, got %d", s.Port)
	}
	return &s, nil
}

// Addr is the host:port the HTTP server listens on
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
