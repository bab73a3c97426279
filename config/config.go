/*
Package config loads the server configuration from the environment.

PURPOSE:
  One flat struct tagged for env parsing. Command-line flags in
  cmd/server may override individual fields after Load.

ENVIRONMENT:
  PORT                   HTTP server port (default 8080)
  DB_PATH                SQLite database path (default coins.db)
  USER_ID                Account identifier supplied by the host app
  PLATFORM               "ios" or "android"; mixed into checksums
  REMOTE_BASE_URL        Backend base URL; empty disables remote calls
  REMOTE_API_KEY         Static bearer credential
  REMOTE_SIGNING_SECRET  HS256 secret for minted bearer tokens
  VALIDATE_TIMEOUT       Purchase validation timeout (default 5s)
  FRAUD_TIMEOUT          Fraud check timeout (default 3s)
  REPORT_TIMEOUT         Event report timeout (default 2s)
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"coins.db"`

	UserID   string `env:"USER_ID" envDefault:"local-player"`
	Platform string `env:"PLATFORM" envDefault:"android"`

	RemoteBaseURL string `env:"REMOTE_BASE_URL"`
	APIKey        string `env:"REMOTE_API_KEY"`
	SigningSecret string `env:"REMOTE_SIGNING_SECRET"`

	ValidateTimeout time.Duration `env:"VALIDATE_TIMEOUT" envDefault:"5s"`
	FraudTimeout    time.Duration `env:"FRAUD_TIMEOUT" envDefault:"3s"`
	ReportTimeout   time.Duration `env:"REPORT_TIMEOUT" envDefault:"2s"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
