package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GCP_PROJECT_ID", "")
	t.Setenv("GCP_REGION", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("PUZZLE_DIR", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xwplay.toml")
	data := `addr = ":9000"
puzzle_dir = "puzzles"

[gcp]
project_id = "from-file"
model = ""

[limits]
uploads_per_minute = 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "")
	t.Setenv("PUZZLE_DIR", "")
	t.Setenv("GCP_REGION", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GCP_PROJECT_ID", "from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.PuzzleDir != "puzzles" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.GCP.ProjectID != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.GCP.ProjectID)
	}
	if cfg.GCP.Model != defaultModel || cfg.GCP.Region != defaultRegion {
		t.Fatalf("expected default model and region, got %+v", cfg.GCP)
	}
	if cfg.Limits.UploadsPerMinute != 2 || cfg.Limits.CommandsPerSecond != defaultCommandsPerSecond {
		t.Fatalf("unexpected limits %+v", cfg.Limits)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("addr = "), 0o644)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestApplyEnvPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.applyEnv(func(k string) string {
		if k == "PORT" {
			return "3000"
		}
		return ""
	})
	if cfg.Addr != ":3000" {
		t.Fatalf("expected :3000, got %s", cfg.Addr)
	}
}
