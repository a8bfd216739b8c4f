// Package config loads lorebook settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/lorebook/internal/model"
)

// Config holds all lorebook configuration.
type Config struct {
	DBPath     string           `yaml:"db_path"`
	Log        LogConfig        `yaml:"log"`
	Chat       ChatConfig       `yaml:"chat"`
	Activation ActivationConfig `yaml:"activation"`
}

// LogConfig configures logging. Enabled false discards every record.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, warn, error
	Format  string `yaml:"format"` // json or console
}

// ChatConfig selects where chat history is read from.
type ChatConfig struct {
	Source   string `yaml:"source"` // sqlite or redis
	RedisURL string `yaml:"redis_url"`
}

// ActivationConfig tunes the activation engine.
type ActivationConfig struct {
	DefaultScanDepth int   `yaml:"default_scan_depth"`
	Seed             int64 `yaml:"seed"` // 0 seeds from the clock
}

// Chat sources.
const (
	SourceSQLite = "sqlite"
	SourceRedis  = "redis"
)

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DBPath: filepath.Join(home, ".lorebook", "lorebook.db"),
		Log: LogConfig{
			Enabled: true,
			Level:   "warn",
			Format:  "console",
		},
		Chat: ChatConfig{Source: SourceSQLite},
		Activation: ActivationConfig{
			DefaultScanDepth: model.DefaultScanDepth,
		},
	}
}

// DefaultPath is $LOREBOOK_CONFIG or ~/.lorebook/config.yaml.
func DefaultPath() string {
	if env := os.Getenv("LOREBOOK_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lorebook", "config.yaml")
}

// Load reads path on top of the defaults, then applies .env and
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// A missing .env is fine; variables already set in the environment win.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOREBOOK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LOREBOOK_LOG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Enabled = b
		}
	}
	if v := os.Getenv("LOREBOOK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOREBOOK_CHAT_SOURCE"); v != "" {
		cfg.Chat.Source = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Chat.RedisURL = v
	}
}

// Validate checks enumerated fields and ranges.
func (c *Config) Validate() error {
	c.Chat.Source = strings.ToLower(strings.TrimSpace(c.Chat.Source))
	switch c.Chat.Source {
	case "":
		c.Chat.Source = SourceSQLite
	case SourceSQLite:
	case SourceRedis:
		if c.Chat.RedisURL == "" {
			return fmt.Errorf("chat.source is redis but no redis_url or REDIS_URL is set")
		}
	default:
		return fmt.Errorf("invalid chat.source %q (valid: sqlite, redis)", c.Chat.Source)
	}

	if c.Activation.DefaultScanDepth < 0 {
		return fmt.Errorf("invalid activation.default_scan_depth %d", c.Activation.DefaultScanDepth)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log.format %q (valid: json, console)", c.Log.Format)
	}
	return nil
}
