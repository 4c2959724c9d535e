package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":5000" {
		t.Fatalf("expected default addr ':5000', got %q", cfg.HTTPAddr)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := Config{DBPath: "/tmp/events.db", HTTPAddr: ":9000"}

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("EVENTDESK_DB", "/tmp/override.db")
	t.Setenv("EVENTDESK_ADDR", ":7000")

	cfg := ApplyEnv(Default())
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("expected db override, got %q", cfg.DBPath)
	}
	if cfg.HTTPAddr != ":7000" {
		t.Fatalf("expected addr override, got %q", cfg.HTTPAddr)
	}
}
