package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode by default")
	}
	if cfg.ResponderURL != "http://localhost:3001" {
		t.Fatalf("unexpected responder URL %q", cfg.ResponderURL)
	}
	if cfg.ChunkDelay != 30*time.Millisecond || cfg.SlowDelay != 100*time.Millisecond {
		t.Fatalf("unexpected delays: %v, %v", cfg.ChunkDelay, cfg.SlowDelay)
	}
	if cfg.ChunkSize != 50 {
		t.Fatalf("unexpected chunk size %d", cfg.ChunkSize)
	}
	if cfg.Engine != "echo" {
		t.Fatalf("unexpected engine %q", cfg.Engine)
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("ENGINE", "rulebased")
	t.Setenv("CHUNK_DELAY_MS", "5")
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Fatalf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.IsDevelopment() {
		t.Fatal("expected production mode")
	}
	if cfg.Engine != "rulebased" {
		t.Fatalf("expected rulebased engine, got %q", cfg.Engine)
	}
	if cfg.ChunkDelay != 5*time.Millisecond {
		t.Fatalf("expected 5ms chunk delay, got %v", cfg.ChunkDelay)
	}
	// Invalid integers fall back to the default.
	if cfg.ChunkSize != 50 {
		t.Fatalf("expected default chunk size, got %d", cfg.ChunkSize)
	}
}
