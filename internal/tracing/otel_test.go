package tracing

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/carelay/internal/config"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{}, "test")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestInit_EnabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{Enabled: true}, "test")
	if err == nil {
		t.Fatal("Init() error = nil, want missing endpoint error")
	}
	if shutdown == nil {
		t.Fatal("Init() returned nil shutdown on error")
	}
}

func TestInit_UnsupportedProtocol(t *testing.T) {
	cfg := config.TelemetryConfig{Enabled: true, Endpoint: "localhost:4317", Protocol: "udp"}
	if _, err := Init(context.Background(), cfg, "test"); err == nil {
		t.Fatal("Init() error = nil, want unsupported protocol error")
	}
}
