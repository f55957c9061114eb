package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Backend.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.DebounceWindow() != 500*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 500ms", cfg.DebounceWindow())
	}
	if cfg.Engine.MaxUploadRetries != 2 {
		t.Errorf("MaxUploadRetries = %d, want 2", cfg.Engine.MaxUploadRetries)
	}
	if cfg.RetryDelay() != 3*time.Second {
		t.Errorf("RetryDelay = %v, want 3s", cfg.RetryDelay())
	}
	if cfg.UploadTimeout() != 2*time.Minute {
		t.Errorf("UploadTimeout = %v, want 2m", cfg.UploadTimeout())
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspector.yaml")
	body := `
backend:
  base_url: https://inspections.example.com
  token: abc123
engine:
  debounce_window_ms: 250
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "https://inspections.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Token != "abc123" {
		t.Errorf("Token = %q", cfg.Backend.Token)
	}
	if cfg.DebounceWindow() != 250*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want file override", cfg.DebounceWindow())
	}
	// Fields the file omits keep their defaults.
	if cfg.Backend.SaveTimeout != 10 {
		t.Errorf("SaveTimeout = %d, want default 10", cfg.Backend.SaveTimeout)
	}
	if cfg.DataDir != ".inspector" {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspector.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  base_url: http://from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BACKEND_URL", "http://from-env")
	t.Setenv("BACKEND_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://from-env" {
		t.Errorf("BaseURL = %q, env must win", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Token != "env-token" {
		t.Errorf("Token = %q", cfg.Backend.Token)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of a missing path should error")
	}
	if _, err := Load(""); err != nil {
		t.Errorf("Load(\"\") = %v, empty path means defaults only", err)
	}
}
