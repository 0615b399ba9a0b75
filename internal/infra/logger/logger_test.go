package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "joh***@example.com",
		"al@x.io":              "al***@x.io",
		"@nouser.com":          "***@nouser.com",
		"plain":                "***",
		"":                     "",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskIP(t *testing.T) {
	if got := MaskIP("192.168.1.100"); got != "192.168.*.*" {
		t.Fatalf("unexpected ipv4 mask %q", got)
	}
	if got := MaskIP("2001:0db8:85a3:0000:0000:8a2e:0370:7334"); got != "2001:0db8:85a3:0000:*:*:*:*" {
		t.Fatalf("unexpected ipv6 mask %q", got)
	}
}

func TestMaskString(t *testing.T) {
	if got := MaskString("secret123"); got != "se***23" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskString("abc"); got != "***" {
		t.Fatalf("unexpected short mask %q", got)
	}
}

func TestWithContextAddsRequestAndTraceIDs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := context.WithValue(context.Background(), RequestIDKey{}, "req-1")
	ctx = context.WithValue(ctx, TraceIDKey{}, "trace-1")
	WithContext(ctx, base).Info("hello")
	WithContext(context.Background(), base).Info("bare")

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["trace_id"] != "trace-1" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("expected no fields without ids, got %v", entries[1].ContextMap())
	}
}

func TestWithContextNilBase(t *testing.T) {
	if WithContext(context.Background(), nil) == nil {
		t.Fatalf("expected a usable logger for a nil base")
	}
}
