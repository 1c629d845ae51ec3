// Package config loads YAML configuration from the per-user config area.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/bootlens/internal/domain"
	"github.com/doeshing/bootlens/internal/ports"
)

// FileLoader loads YAML configuration from
// $XDG_CONFIG_HOME/bootlens/config.yaml (overridable via BOOTLENS_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is first-run normal:
// defaults are written and returned.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeConfig(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

// Save persists the configuration (used by `bootlens config set`). The file
// may hold the API key, hence the restrictive mode.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return writeConfig(path, cfg)
}

// Path returns the resolved config file location.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("BOOTLENS_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(configHome(), "bootlens", "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeConfig(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Model: domain.ModelSettings{
			Endpoint:       "https://openrouter.ai/api/v1/chat/completions",
			ModelID:        "anthropic/claude-sonnet-4",
			AuthEnvVar:     "OPENROUTER_API_KEY",
			MaxTokens:      domain.DefaultMaxTokens,
			TimeoutSeconds: 60,
		},
		Capture: domain.CaptureSettings{
			MaxBytes:           domain.DefaultCaptureMaxBytes,
			IncludeFailedUnits: boolPtr(true),
		},
		Store: domain.StoreSettings{
			Path:               filepath.Join(configHome(), "bootlens", "dedup.db"),
			ReopenOnRecurrence: boolPtr(true),
		},
		Execution: domain.ExecutionSettings{
			Shell:        "auto",
			ExcerptBytes: domain.DefaultExcerptBytes,
		},
		Security: domain.SecuritySettings{
			Enabled:   boolPtr(true),
			RulesFile: filepath.Join(configHome(), "bootlens", "guardrail.yaml"),
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	defaults := defaultConfig()
	if cfg.Model.Endpoint == "" {
		cfg.Model.Endpoint = defaults.Model.Endpoint
	}
	if cfg.Model.ModelID == "" {
		cfg.Model.ModelID = defaults.Model.ModelID
	}
	if cfg.Model.AuthEnvVar == "" {
		cfg.Model.AuthEnvVar = defaults.Model.AuthEnvVar
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = defaults.Model.MaxTokens
	}
	if cfg.Model.TimeoutSeconds == 0 {
		cfg.Model.TimeoutSeconds = defaults.Model.TimeoutSeconds
	}
	if cfg.Capture.MaxBytes == 0 {
		cfg.Capture.MaxBytes = defaults.Capture.MaxBytes
	}
	// Absent boolean keys stay nil through unmarshal and take the default
	// here; only an explicit `false` in the file turns a policy off.
	if cfg.Capture.IncludeFailedUnits == nil {
		cfg.Capture.IncludeFailedUnits = defaults.Capture.IncludeFailedUnits
	}
	if cfg.Store.ReopenOnRecurrence == nil {
		cfg.Store.ReopenOnRecurrence = defaults.Store.ReopenOnRecurrence
	}
	if cfg.Security.Enabled == nil {
		cfg.Security.Enabled = defaults.Security.Enabled
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaults.Store.Path
	}
	if cfg.Execution.Shell == "" {
		cfg.Execution.Shell = defaults.Execution.Shell
	}
	if cfg.Execution.ExcerptBytes == 0 {
		cfg.Execution.ExcerptBytes = defaults.Execution.ExcerptBytes
	}
	if cfg.Security.RulesFile == "" {
		cfg.Security.RulesFile = defaults.Security.RulesFile
	}
	return cfg
}

func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(userHomeDir(), ".config")
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
