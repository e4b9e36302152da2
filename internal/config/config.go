package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jlo/internal/env"

	"github.com/natefinch/atomic"
)

// Match strategies for resolving a requested version against installed ones.
const (
	MatchPrefix = "prefix"
	MatchMajor  = "major"
)

// Config holds the user-level settings
type Config struct {
	JdkDir       string       `json:"jdk_dir,omitempty"` // Install base override
	Match        string       `json:"match,omitempty"`   // "prefix" or "major"
	UpdateConfig UpdateConfig `json:"update_config"`     // Self-update configuration
	configPath   string
}

// UpdateConfig holds settings for the self-update feature
type UpdateConfig struct {
	Enabled     bool      `json:"enabled"`      // Master toggle for update functionality
	AutoCheck   bool      `json:"auto_check"`   // Check for updates on startup
	LastCheck   time.Time `json:"last_check"`   // Last time update check was performed
	SkipVersion string    `json:"skip_version"` // Version user chose to skip
}

// Load loads the settings from the user's config directory
func Load(p env.Provider) (*Config, error) {
	configPath, err := getConfigPath(p)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Match: MatchPrefix,
		UpdateConfig: UpdateConfig{
			Enabled:   true,
			AutoCheck: true,
		},
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(trimBOM(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	cfg.JdkDir = strings.TrimSpace(cfg.JdkDir)
	if cfg.JdkDir != "" {
		cfg.JdkDir = filepath.Clean(cfg.JdkDir)
	}
	switch cfg.Match {
	case MatchPrefix, MatchMajor:
	case "":
		cfg.Match = MatchPrefix
	default:
		return nil, fmt.Errorf("invalid match strategy %q in %s (want %q or %q)", cfg.Match, configPath, MatchPrefix, MatchMajor)
	}

	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the settings to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return atomic.WriteFile(c.configPath, bytes.NewReader(data))
}

// Path returns the file the settings are stored in.
func (c *Config) Path() string {
	return c.configPath
}

// getConfigPath follows the XDG Base Directory specification
func getConfigPath(p env.Provider) (string, error) {
	if configHome := p.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "jlo", "jlo.json"), nil
	}

	homeDir, err := p.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "jlo", "jlo.json"), nil
}

// JdkBase resolves the install base: flagValue, then $JLO_JDK_DIR, then the
// jdk_dir setting, then the platform default.
func (c *Config) JdkBase(p env.Provider, flagValue string) (string, error) {
	if flagValue != "" {
		return filepath.Clean(flagValue), nil
	}
	if p.Getenv(env.JdkDirVar) == "" && c.JdkDir != "" {
		return c.JdkDir, nil
	}
	return env.DefaultJdkBase(p)
}
