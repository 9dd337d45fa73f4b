package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	if cfg.MinPasswordLength() != 6 {
		t.Fatalf("min password length: %d", cfg.MinPasswordLength())
	}
	if cfg.PollInterval() != 10 {
		t.Fatalf("poll interval: %d", cfg.PollInterval())
	}
	if cfg.PanelSize() != 10 {
		t.Fatalf("panel size: %d", cfg.PanelSize())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
	if cfg.PollInterval() != 10 {
		t.Fatalf("unexpected poll interval %d", cfg.PollInterval())
	}

	yml := "auth:\n  min_password_length: 8\nnotifications:\n  poll_interval_seconds: 30\n"
	if err := os.WriteFile(filepath.Join(dir, "taskguard.yml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = config.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MinPasswordLength() != 8 || cfg.PollInterval() != 30 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestValidateRejectsNegatives(t *testing.T) {
	if _, err := config.FromYAML([]byte("notifications:\n  poll_interval_seconds: -1\n")); err == nil {
		t.Fatal("expected validation error")
	}
}
