package util

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_NAME", "cliflow_ci")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("JWT_SECRET", "ci-secret")

	cfg := LoadConfig()
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
	}
	if cfg.DBName != "cliflow_ci" {
		t.Fatalf("expected cliflow_ci, got %q", cfg.DBName)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %v", cfg.TokenTTL)
	}
	if cfg.JWTSecret != "ci-secret" {
		t.Fatalf("expected ci-secret, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfigBadTTLFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")
	cfg := LoadConfig()
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("expected fallback 72h ttl, got %v", cfg.TokenTTL)
	}
}
