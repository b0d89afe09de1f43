package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// --- Default ---

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.AutoSave {
		t.Error("AutoSave should default to true")
	}
	if cfg.AutoSaveIntervalSeconds != 30 {
		t.Errorf("AutoSaveIntervalSeconds = %d, want 30", cfg.AutoSaveIntervalSeconds)
	}
	if !cfg.ShowGrid || cfg.DarkTheme || cfg.SnapToGrid {
		t.Errorf("display defaults = grid:%v dark:%v snap:%v", cfg.ShowGrid, cfg.DarkTheme, cfg.SnapToGrid)
	}
	if !cfg.RevisionCheck {
		t.Error("RevisionCheck should default to true")
	}
	if cfg.SessionLoadPolicy != "abort" {
		t.Errorf("SessionLoadPolicy = %s, want abort", cfg.SessionLoadPolicy)
	}
	if filepath.Base(cfg.DataDir) != DirName {
		t.Errorf("DataDir = %s, want it to end in %s", cfg.DataDir, DirName)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestAutoSaveInterval(t *testing.T) {
	cfg := Default()
	cfg.AutoSaveIntervalSeconds = 45
	if got := cfg.AutoSaveInterval(); got != 45*time.Second {
		t.Errorf("AutoSaveInterval = %v, want 45s", got)
	}
}

// --- Load ---

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AutoSaveIntervalSeconds != 30 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := "autosave: false\nautosave_interval_seconds: 120\nworkspace: /tmp/clinica\nsession_load_policy: skip\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AutoSave {
		t.Error("AutoSave should be false")
	}
	if cfg.AutoSaveIntervalSeconds != 120 {
		t.Errorf("interval = %d, want 120", cfg.AutoSaveIntervalSeconds)
	}
	if cfg.Workspace != "/tmp/clinica" {
		t.Errorf("Workspace = %s", cfg.Workspace)
	}
	if cfg.SessionLoadPolicy != "skip" {
		t.Errorf("SessionLoadPolicy = %s, want skip", cfg.SessionLoadPolicy)
	}
	if !cfg.ShowGrid {
		t.Error("ShowGrid should keep its default")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "autosave: [", "loading config"},
		{"zero interval", "autosave_interval_seconds: 0\n", "AutoSaveIntervalSeconds"},
		{"bad policy", "session_load_policy: retry\n", "SessionLoadPolicy"},
		{"bad level", "log_level: loud\n", "LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.DarkTheme = true
	cfg.Workspace = "/srv/prontuarios"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := filepath.Join(t.TempDir(), FileName)
	_ = os.WriteFile(path, []byte("data_dir: ~/clinimap-data\n"), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != filepath.Join(home, "clinimap-data") {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
}

// --- Configuration ---

func TestConfiguration(t *testing.T) {
	cfg := Default()
	cfg.SnapToGrid = true

	got := cfg.Configuration("consultorio")
	want := Configuration{
		Workspace:        "consultorio",
		AutoSave:         true,
		AutoSaveInterval: 30,
		ShowGrid:         true,
		SnapToGrid:       true,
	}
	if got != want {
		t.Errorf("Configuration = %+v, want %+v", got, want)
	}
	if cfg.Configuration("").Workspace != "" {
		t.Error("workspace should be empty when none is selected")
	}
}
