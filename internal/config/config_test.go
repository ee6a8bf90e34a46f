package config

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("AccessTTL = %v", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 168*time.Hour {
		t.Fatalf("RefreshTTL = %v", cfg.RefreshTTL)
	}
	if cfg.Issuer != "rh-management" {
		t.Fatalf("Issuer = %q", cfg.Issuer)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RH_LISTEN_ADDR", ":9999")
	t.Setenv("RH_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("RH_RATE_LIMIT_PER_SECOND", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.AccessTTL != 5*time.Minute {
		t.Fatalf("AccessTTL = %v", cfg.AccessTTL)
	}
	if cfg.RateLimitPerSecond != 3 {
		t.Fatalf("RateLimitPerSecond = %d", cfg.RateLimitPerSecond)
	}
}

func TestDocumentKeyBytes(t *testing.T) {
	key32 := base64.StdEncoding.EncodeToString(make([]byte, 32))
	key20 := base64.StdEncoding.EncodeToString(make([]byte, 20))

	tests := []struct {
		name    string
		key     string
		wantLen int
		wantErr bool
	}{
		{"missing", "", 0, true},
		{"not base64", "!!!", 0, true},
		{"wrong length", key20, 0, true},
		{"aes-256", key32, 32, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{DocumentKey: tt.key}
			key, err := cfg.DocumentKeyBytes()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DocumentKeyBytes: %v", err)
			}
			if len(key) != tt.wantLen {
				t.Fatalf("key length = %d, want %d", len(key), tt.wantLen)
			}
		})
	}
}
