package util

import (
	"testing"
	"time"

	"github.com/cliflow/cliflow_backend/models"
)

func testTokenConfig() Config {
	return Config{JWTSecret: "unit-test-secret", TokenTTL: time.Hour}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testTokenConfig()
	user := models.User{ID: 7, Email: "someone@example.com"}

	token, err := GenerateToken(cfg, user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sub, err := SubjectFromClaims(claims)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if sub != user.Email {
		t.Fatalf("expected subject %q, got %q", user.Email, sub)
	}
}

func TestParseTokenBearerPrefix(t *testing.T) {
	cfg := testTokenConfig()
	token, err := GenerateToken(cfg, models.User{Email: "someone@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(cfg, "Bearer "+token); err != nil {
		t.Fatalf("parse with Bearer prefix: %v", err)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	cfg := testTokenConfig()
	token, err := GenerateToken(cfg, models.User{Email: "someone@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := Config{JWTSecret: "a-different-secret", TokenTTL: time.Hour}
	if _, err := ParseToken(other, token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseTokenExpired(t *testing.T) {
	cfg := Config{JWTSecret: "unit-test-secret", TokenTTL: -time.Minute}
	token, err := GenerateToken(cfg, models.User{Email: "someone@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestSubjectFromClaimsMissing(t *testing.T) {
	if _, err := SubjectFromClaims(map[string]interface{}{}); err == nil {
		t.Fatal("expected error for claims without subject")
	}
}
