package redis

import (
	"context"
	"crypto/tls"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"github.com/Rista10/event-planner-application/internal/infra/config"
)

func settingsFor(t *testing.T, mr *miniredis.Miniredis) config.RedisSettings {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("invalid miniredis port %q: %v", mr.Port(), err)
	}
	return config.RedisSettings{Host: mr.Host(), Port: port}
}

func TestNewClientAndHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), settingsFor(t, mr), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}

	mr.Close()
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatalf("expected health check to fail once the server is gone")
	}
}

func TestNewClientFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := settingsFor(t, mr)
	mr.Close()

	if _, err := NewClient(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}

func TestOptions(t *testing.T) {
	opts := Options(config.RedisSettings{Host: "cache.internal", Port: 6380, DB: 2, Password: "pw", TLSEnabled: true})

	if opts.Addr != "cache.internal:6380" || opts.DB != 2 || opts.Password != "pw" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tls.VersionTLS12 || opts.TLSConfig.ServerName != "cache.internal" {
		t.Fatalf("expected TLS 1.2 config, got %+v", opts.TLSConfig)
	}

	if plain := Options(config.RedisSettings{Host: "localhost", Port: 6379}); plain.TLSConfig != nil {
		t.Fatalf("TLS must be off by default")
	}
}
