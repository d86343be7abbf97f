package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Model.TopK != 20 {
		t.Errorf("TopK = %d, want 20", cfg.Model.TopK)
	}
	if cfg.Explain.Mode != "rule" {
		t.Errorf("Explain.Mode = %q, want rule", cfg.Explain.Mode)
	}
	if cfg.Redis.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cfg.Redis.CacheTTL)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9191
model:
  top_k: 35
explain:
  mode: rag
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Model.TopK != 35 {
		t.Errorf("TopK = %d, want 35", cfg.Model.TopK)
	}
	if cfg.Explain.Mode != "rag" {
		t.Errorf("Explain.Mode = %q, want rag", cfg.Explain.Mode)
	}
	// Untouched keys keep their defaults.
	if cfg.Database.PoolSize != 20 {
		t.Errorf("PoolSize = %d, want default 20", cfg.Database.PoolSize)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9191
`)
	t.Setenv("CINEMATCH_SERVER__PORT", "7070")
	t.Setenv("CINEMATCH_MODEL__TOP_K", "7")
	t.Setenv("CINEMATCH_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Model.TopK != 7 {
		t.Errorf("TopK = %d, want env override 7", cfg.Model.TopK)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad log level", "log_level: loud"},
		{"bad explain mode", "explain:\n  mode: magic"},
		{"port out of range", "server:\n  port: 99999"},
		{"zero pool size", "database:\n  pool_size: 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestAddr(t *testing.T) {
	cfg := defaults()
	if got := cfg.Addr(); got != ":8080" {
		t.Errorf("Addr = %q, want :8080", got)
	}
}
