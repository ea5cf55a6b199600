package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Practice PracticeConfig
	Server   ServerConfig
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// PracticeConfig holds quiz and retention settings.
type PracticeConfig struct {
	Choices       int `mapstructure:"choices"`
	MistakeLimit  int `mapstructure:"mistake_limit"`
	FeedbackLimit int `mapstructure:"feedback_limit"`
	HistoryLimit  int `mapstructure:"history_limit"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

func configPath() string {
	if p := os.Getenv("MATHVERBAL_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "mathverbal", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix MATHVERBAL_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "mathverbal", "mathverbal.db"))
	v.SetDefault("practice.choices", 4)
	v.SetDefault("practice.mistake_limit", 200)
	v.SetDefault("practice.feedback_limit", 100)
	v.SetDefault("practice.history_limit", 500)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	v.SetConfigFile(configPath())

	v.SetEnvPrefix("MATHVERBAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Practice.Choices < 2 {
		c.Practice.Choices = 2
	}
	return c, nil
}

// Save writes cfg to disk, creating the config directory if needed.
func Save(cfg Config) (string, error) {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("practice.choices", cfg.Practice.Choices)
	v.Set("practice.mistake_limit", cfg.Practice.MistakeLimit)
	v.Set("practice.feedback_limit", cfg.Practice.FeedbackLimit)
	v.Set("practice.history_limit", cfg.Practice.HistoryLimit)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
