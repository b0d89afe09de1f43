// Package config loads the application settings from a YAML file and
// exposes the Configuration view stored inside export snapshots.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-user data folder under the home directory.
	DirName = ".clinimap"
	// FileName is the config file inside DirName.
	FileName = "config.yaml"
)

// Config holds the application settings.
type Config struct {
	// DataDir holds the activity history database and default exports.
	DataDir string `yaml:"data_dir" validate:"required"`
	// Workspace is the folder granted at startup. Empty means the user
	// must pick one through a tool call or the --workspace flag.
	Workspace string `yaml:"workspace"`
	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	AutoSave                bool `yaml:"autosave"`
	AutoSaveIntervalSeconds int  `yaml:"autosave_interval_seconds" validate:"gte=1,lte=3600"`

	DarkTheme  bool `yaml:"dark_theme"`
	ShowGrid   bool `yaml:"show_grid"`
	SnapToGrid bool `yaml:"snap_to_grid"`

	SessionLoadPolicy string `yaml:"session_load_policy" validate:"omitempty,oneof=abort skip"`
	RevisionCheck     bool   `yaml:"revision_check"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:                 filepath.Join(home, DirName),
		LogLevel:                "info",
		AutoSave:                true,
		AutoSaveIntervalSeconds: 30,
		ShowGrid:                true,
		SessionLoadPolicy:       "abort",
		RevisionCheck:           true,
	}
}

// DefaultPath returns ~/.clinimap/config.yaml.
func DefaultPath() string {
	return filepath.Join(Default().DataDir, FileName)
}

// Load reads the config file at path on top of Default. A missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("loading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Workspace = expandHome(cfg.Workspace)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent folder.
func Save(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

var validate = validator.New()

// Validate checks the field rules of cfg.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", e.Field(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AutoSaveInterval returns the autosave period.
func (c Config) AutoSaveInterval() time.Duration {
	return time.Duration(c.AutoSaveIntervalSeconds) * time.Second
}

// Configuration is the settings snapshot written into exports. Workspace
// is the display name of the granted folder, empty while none is granted.
type Configuration struct {
	Workspace        string `json:"pastaTrabalho"`
	AutoSave         bool   `json:"autoSave"`
	AutoSaveInterval int    `json:"intervaloAutoSave"`
	DarkTheme        bool   `json:"temaEscuro"`
	ShowGrid         bool   `json:"showGrid"`
	SnapToGrid       bool   `json:"snapToGrid"`
}

// Configuration returns the snapshot view of c for the given workspace.
func (c Config) Configuration(workspaceName string) Configuration {
	return Configuration{
		Workspace:        workspaceName,
		AutoSave:         c.AutoSave,
		AutoSaveInterval: c.AutoSaveIntervalSeconds,
		DarkTheme:        c.DarkTheme,
		ShowGrid:         c.ShowGrid,
		SnapToGrid:       c.SnapToGrid,
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
