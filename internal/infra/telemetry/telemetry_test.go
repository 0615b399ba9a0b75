package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProviderCountsOperations(t *testing.T) {
	registry := prometheus.NewRegistry()
	p, err := NewProvider(registry)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	p.ObserveAuthOperation("login", "success")
	p.ObserveAuthOperation("login", "success")
	p.ObserveAuthOperation("login", "invalid_credentials")
	p.ObserveDeliveryFailure("email", "verification")

	if got := testutil.ToFloat64(p.AuthOperations().WithLabelValues("login", "success")); got != 2 {
		t.Fatalf("expected 2 successful logins, got %f", got)
	}
	if got := testutil.ToFloat64(p.AuthOperations().WithLabelValues("login", "invalid_credentials")); got != 1 {
		t.Fatalf("expected 1 failed login, got %f", got)
	}
	if got := testutil.ToFloat64(p.DeliveryFailures().WithLabelValues("email", "verification")); got != 1 {
		t.Fatalf("expected 1 delivery failure, got %f", got)
	}
}

func TestProviderReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first, err := NewProvider(registry)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	second, err := NewProvider(registry)
	if err != nil {
		t.Fatalf("second NewProvider: %v", err)
	}

	first.ObserveAuthOperation("refresh", "success")
	second.ObserveAuthOperation("refresh", "success")

	if got := testutil.ToFloat64(first.AuthOperations().WithLabelValues("refresh", "success")); got != 2 {
		t.Fatalf("expected shared counter value 2, got %f", got)
	}
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	p.ObserveAuthOperation("login", "success")
	p.ObserveDeliveryFailure("event", "user.registered")
}
