package daemon

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !strings.Contains(cfg.SocketPath, ".oeismatch") {
		t.Errorf("socket path should live under .oeismatch: %s", cfg.SocketPath)
	}
	if filepath.Base(cfg.SocketPath) != "daemon.sock" {
		t.Errorf("socket file = %s", cfg.SocketPath)
	}
	if filepath.Base(cfg.PIDPath) != "daemon.pid" {
		t.Errorf("pid file = %s", cfg.PIDPath)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.AutoStart {
		t.Error("AutoStart should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty socket", func(c *Config) { c.SocketPath = "" }},
		{"empty pid", func(c *Config) { c.PIDPath = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero grace", func(c *Config) { c.ShutdownGracePeriod = 0 }},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		SocketPath:          filepath.Join(dir, "state", "daemon.sock"),
		PIDPath:             filepath.Join(dir, "pids", "daemon.pid"),
		Timeout:             time.Second,
		ShutdownGracePeriod: time.Second,
	}
	if err := cfg.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
}
