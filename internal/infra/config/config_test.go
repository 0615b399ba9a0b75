package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredSecrets(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Port != 3000 || cfg.App.IsProduction() {
		t.Fatalf("unexpected app settings %+v", cfg.App)
	}
	if ttl, _ := cfg.JWT.AccessTokenTTL(); ttl != 15*time.Minute {
		t.Fatalf("expected 15m access ttl, got %s", ttl)
	}
	if ttl, _ := cfg.JWT.RefreshTokenTTL(); ttl != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh ttl, got %s", ttl)
	}
	if cfg.Tokens.EmailVerificationTTL() != 24*time.Hour || cfg.Tokens.PasswordResetTTL() != time.Hour || cfg.Tokens.TwoFactorTTL() != 10*time.Minute {
		t.Fatalf("unexpected token lifetimes %+v", cfg.Tokens)
	}
	if cfg.RateLimit.AuthWindow != 15*time.Minute || cfg.RateLimit.AuthMaxRequests != 20 {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if !cfg.Features.TwoFactor {
		t.Fatalf("two-factor must default to enabled")
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != cfg.FrontendURL {
		t.Fatalf("expected CORS to default to the frontend url, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.SMTP.Enabled() {
		t.Fatalf("SMTP must be disabled without credentials")
	}
}

func TestLoadFlatAliases(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("NODE_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("PASSWORD_RESET_EXPIRY_MINUTES", "30")
	t.Setenv("FEATURE_2FA", "false")
	t.Setenv("FRONTEND_URL", "https://planner.example")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASS", "pw")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.App.IsProduction() || cfg.App.Port != 8080 {
		t.Fatalf("unexpected app settings %+v", cfg.App)
	}
	if ttl, _ := cfg.JWT.AccessTokenTTL(); ttl != 30*time.Minute {
		t.Fatalf("expected 30m access ttl, got %s", ttl)
	}
	if cfg.Tokens.PasswordResetTTL() != 30*time.Minute {
		t.Fatalf("unexpected reset ttl %s", cfg.Tokens.PasswordResetTTL())
	}
	if cfg.Features.TwoFactor {
		t.Fatalf("expected FEATURE_2FA=false to disable two-factor")
	}
	if cfg.CORS.AllowedOrigins[0] != "https://planner.example" {
		t.Fatalf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.SMTP.Enabled() {
		t.Fatalf("expected SMTP to be enabled with credentials")
	}
}

func TestLoadPrefixedVariableWins(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("EP_APP_PORT", "9090")
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("expected EP_APP_PORT to take precedence, got %d", cfg.App.Port)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")
	t.Setenv("JWT_REFRESH_EXPIRY", "soon")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"must differ", "jwt.refresh_ttl"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":  7 * 24 * time.Hour,
		"15m": 15 * time.Minute,
		" 1h": time.Hour,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		if err != nil || got != want {
			t.Fatalf("ParseDuration(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseDuration("xd"); err == nil {
		t.Fatalf("expected error for malformed day count")
	}
}
