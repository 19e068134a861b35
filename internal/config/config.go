// Package config loads and persists the Textora user configuration from
// .textora/config.yaml, with TEXTORA_* environment overrides applied on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// VoiceConfig selects the speech adapters.
type VoiceConfig struct {
	// OpenAIAPIKey enables the remote transcription/synthesis adapters.
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty" env:"OPENAI_API_KEY"`
	// Optional binary overrides; discovered on PATH when empty.
	SpeakCommand  string `yaml:"speak_command,omitempty" env:"TEXTORA_SPEAK_COMMAND"`
	RecordCommand string `yaml:"record_command,omitempty" env:"TEXTORA_RECORD_COMMAND"`
	PlayCommand   string `yaml:"play_command,omitempty" env:"TEXTORA_PLAY_COMMAND"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode" env:"TEXTORA_DEBUG"`
	Level      string          `yaml:"level,omitempty" env:"TEXTORA_LOG_LEVEL"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// Config is the single source of truth for user configuration.
type Config struct {
	// Endpoint is the remote responder URL.
	Endpoint string `yaml:"endpoint,omitempty" env:"TEXTORA_ENDPOINT"`

	// Theme for the TUI ("dark" or "light").
	Theme string `yaml:"theme,omitempty" env:"TEXTORA_THEME"`

	// Muted disables speech output at startup.
	Muted bool `yaml:"muted" env:"TEXTORA_MUTED"`

	// DownloadsDir receives saved carousel images.
	DownloadsDir string `yaml:"downloads_dir,omitempty" env:"TEXTORA_DOWNLOADS_DIR"`

	Voice   VoiceConfig   `yaml:"voice"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Endpoint:     "http://localhost:5000/generate",
		Theme:        "dark",
		DownloadsDir: "downloads",
		Logging:      LoggingConfig{Level: "info"},
	}
}

// DefaultPath returns the config file location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".textora", "config.yaml")
}

// Load reads the config file if present, fills in defaults, and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults + env only.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Endpoint == "" {
		c.Endpoint = Default().Endpoint
	}
	if c.Theme != "light" {
		c.Theme = "dark"
	}
	if c.DownloadsDir == "" {
		c.DownloadsDir = Default().DownloadsDir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Save writes the config as YAML, creating the parent directory as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
