package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration. Secrets (JWT signing key, document
// encryption key) are injected here and nowhere else; no key material lives in
// code.
type Config struct {
	ListenAddr string `env:"RH_LISTEN_ADDR" envDefault:":8080"`
	PGDSN      string `env:"RH_PG_DSN"`

	JWTSecret  string        `env:"RH_JWT_SECRET"`
	Issuer     string        `env:"RH_TOKEN_ISSUER" envDefault:"rh-management"`
	AccessTTL  time.Duration `env:"RH_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"RH_REFRESH_TOKEN_TTL" envDefault:"168h"`

	// Base64 encoded AES key (16, 24 or 32 bytes once decoded).
	DocumentKey string `env:"RH_DOCUMENT_KEY"`

	// Shared secret presented by the external identity gateway. The
	// external-login endpoint stays disabled until this is set.
	ExternalGatewaySecret string `env:"RH_EXTERNAL_GATEWAY_SECRET"`

	RateLimitPerSecond int   `env:"RH_RATE_LIMIT_PER_SECOND" envDefault:"20"`
	RateLimitBurst     int   `env:"RH_RATE_LIMIT_BURST" envDefault:"40"`
	MaxBodyBytes       int64 `env:"RH_MAX_BODY_BYTES" envDefault:"10485760"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DocumentKeyBytes decodes and validates the document encryption key.
func (c Config) DocumentKeyBytes() ([]byte, error) {
	if c.DocumentKey == "" {
		return nil, errors.New("config: RH_DOCUMENT_KEY is not set")
	}
	key, err := base64.StdEncoding.DecodeString(c.DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("config: decode RH_DOCUMENT_KEY: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("config: RH_DOCUMENT_KEY must decode to 16, 24 or 32 bytes, got %d", len(key))
	}
}
