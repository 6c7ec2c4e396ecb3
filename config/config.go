package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"
	EnvTestnet    = "testnet"
)

type Config struct {
	APIKey         string        `env:"BINANCE_API_KEY"`
	APISecret      string        `env:"BINANCE_API_SECRET"`
	Environment    string        `env:"BINANCE_ENV" envDefault:"production"`
	BaseURL        string        `env:"BINANCE_BASE_URL"`
	HTTPSProxy     string        `env:"BINANCE_HTTPS_PROXY"`
	HTTPProxy      string        `env:"BINANCE_HTTP_PROXY"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	FilterCacheTTL time.Duration `env:"FILTER_CACHE_TTL" envDefault:"5m"`
	DBPath         string        `env:"DB_PATH" envDefault:"data/orders.db"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env files (when present) and then the process environment.
// A missing file is skipped; one that exists but cannot be parsed is an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Environment != EnvProduction && c.Environment != EnvTestnet {
		return fmt.Errorf("BINANCE_ENV must be %s or %s, got %q", EnvProduction, EnvTestnet, c.Environment)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// ProxyURL picks the HTTPS proxy over the HTTP one.
func (c Config) ProxyURL() string {
	if p := strings.TrimSpace(c.HTTPSProxy); p != "" {
		return p
	}
	return strings.TrimSpace(c.HTTPProxy)
}

// HasCredentials reports whether signed endpoints can be used
func (c Config) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}
