// Package config reads the inspector client's YAML config file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure of inspector.yaml.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Engine  EngineConfig  `yaml:"engine"`
	DataDir string        `yaml:"data_dir"`
}

type BackendConfig struct {
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`
	SaveTimeout   int    `yaml:"save_timeout"`   // seconds
	UploadTimeout int    `yaml:"upload_timeout"` // seconds
}

type EngineConfig struct {
	DebounceWindowMs int `yaml:"debounce_window_ms"`
	MaxUploadRetries int `yaml:"max_upload_retries"`
	RetryDelaySec    int `yaml:"retry_delay_sec"`
}

func Default() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:       "http://localhost:8080",
			SaveTimeout:   10,
			UploadTimeout: 120,
		},
		Engine: EngineConfig{
			DebounceWindowMs: 500,
			MaxUploadRetries: 2,
			RetryDelaySec:    3,
		},
		DataDir: ".inspector",
	}
}

// Load reads path and overlays it on the defaults. Env vars BACKEND_URL and
// BACKEND_TOKEN override the file, matching how the server cmds read their
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("BACKEND_TOKEN"); v != "" {
		cfg.Backend.Token = v
	}
	return cfg, nil
}

func (c Config) SaveTimeout() time.Duration {
	return time.Duration(c.Backend.SaveTimeout) * time.Second
}

func (c Config) UploadTimeout() time.Duration {
	return time.Duration(c.Backend.UploadTimeout) * time.Second
}

func (c Config) DebounceWindow() time.Duration {
	return time.Duration(c.Engine.DebounceWindowMs) * time.Millisecond
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Engine.RetryDelaySec) * time.Second
}
