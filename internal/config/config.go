// Package config loads billsync configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings for the session client and
// the local development backend.
type Config struct {
	API struct {
		// BaseURL is the REST endpoint root.
		BaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080"`

		// SocketURL is the expense session channel endpoint.
		SocketURL string `envconfig:"API_SOCKET_URL" default:"ws://localhost:8080/session"`

		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	}

	Session struct {
		// ConnectionTimeout bounds the polling waits for the socket to
		// open or close. Exceeding it does not fail the wait - the caller
		// proceeds optimistically.
		ConnectionTimeout time.Duration `envconfig:"SESSION_CONNECTION_TIMEOUT" default:"5s"`

		// ConnectionCheckInterval is the polling interval for those waits.
		ConnectionCheckInterval time.Duration `envconfig:"SESSION_CONNECTION_CHECK_INTERVAL" default:"50ms"`

		HandshakeTimeout time.Duration `envconfig:"SESSION_HANDSHAKE_TIMEOUT" default:"5s"`
		WriteTimeout     time.Duration `envconfig:"SESSION_WRITE_TIMEOUT" default:"5s"`
	}

	Sessiond struct {
		Port int `envconfig:"SESSIOND_PORT" default:"8080"`

		DBPath string `envconfig:"SESSIOND_DB_PATH" default:"./data/expenses.db"`

		// TokenSecret signs the short-lived connection tokens.
		TokenSecret string `envconfig:"SESSIOND_TOKEN_SECRET" default:"dev-secret"`

		TokenTTL time.Duration `envconfig:"SESSIOND_TOKEN_TTL" default:"2m"`
	}
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
