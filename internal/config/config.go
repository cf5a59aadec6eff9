// Package config loads pcp's settings from a YAML file and PCP_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sokinpui/pcp/internal/fs"
	"github.com/sokinpui/pcp/internal/theme"
)

const appName = "pcp"

// Config holds every setting that can come from the config file.
type Config struct {
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir"`
	Theme          string        `mapstructure:"theme" yaml:"theme"`
	SearchDebounce time.Duration `mapstructure:"search_debounce" yaml:"search_debounce"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`
	ListDepth      int           `mapstructure:"list_depth" yaml:"list_depth"`
	MaxFileSize    int64         `mapstructure:"max_file_size" yaml:"max_file_size"`
	Log            LogConfig     `mapstructure:"log" yaml:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// DefaultConfigPath is $XDG_CONFIG_HOME/pcp/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		DataDir:        filepath.Join(xdg.DataHome, appName),
		SearchDebounce: 300 * time.Millisecond,
		WatchDebounce:  500 * time.Millisecond,
		ListDepth:      1,
		MaxFileSize:    fs.MaxFileSize,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(xdg.StateHome, appName, appName+".log"),
		},
	}
}

// Load reads configuration from path. An empty path means the default
// location, which may be missing. An explicitly given path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	cfg := DefaultConfig()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("search_debounce", cfg.SearchDebounce)
	v.SetDefault("watch_debounce", cfg.WatchDebounce)
	v.SetDefault("list_depth", cfg.ListDepth)
	v.SetDefault("max_file_size", cfg.MaxFileSize)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) || explicit {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Log.File = expandHome(cfg.Log.File)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Theme != "" && !theme.Valid(c.Theme) {
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	if c.SearchDebounce < 0 || c.WatchDebounce <= 0 {
		return fmt.Errorf("debounce intervals must be positive")
	}
	if c.ListDepth < 0 || c.ListDepth > fs.MaxListDepth {
		return fmt.Errorf("list_depth must be between 0 and %d", fs.MaxListDepth)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive")
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// WriteDefault writes the default config to path, or the default location
// when path is empty, and returns where it was written.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
