package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/sokinpui/pcp/internal/config"
)

// Config holds all the command-line flag values.
type Config struct {
	ConfigPath string
	NoConfig   bool
	DataDir    string
	Theme      string
	LogLevel   string
	LogFile    string

	Prompt              string
	Root                string
	ScriptFix           bool
	PromptFromClipboard bool

	Date   string
	Filter string

	Unified   bool
	Overwrite bool
}

// BindGlobalFlags defines the flags shared by every command.
func BindGlobalFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ConfigPath, "config", "c", "", "Path to the config file (default $XDG_CONFIG_HOME/pcp/config.yaml).")
	fs.BoolVar(&cfg.NoConfig, "no-config", false, "Ignore the config file and use built-in defaults.")
	fs.StringVar(&cfg.DataDir, "data-dir", "", "Directory holding history and settings.")
	fs.StringVarP(&cfg.Theme, "theme", "t", "", "Colour theme (light, dark, cosmic, emerald, sunset, ocean, solarized).")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error).")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Write logs to this file.")
}

// BindCopyFlags defines the flags of the copy command.
func BindCopyFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Prompt, "prompt", "p", "", "Prompt placed before the files. Read from stdin when piped.")
	fs.StringVarP(&cfg.Root, "root", "r", "", "Name files relative to this directory.")
	fs.BoolVarP(&cfg.ScriptFix, "script-fix", "f", false, "Append the 'send full script with fix' line.")
	fs.BoolVar(&cfg.PromptFromClipboard, "prompt-from-clipboard", false, "Use the clipboard as the prompt when none is given.")
}

// BindHistoryListFlags defines the flags of history list.
func BindHistoryListFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Date, "date", "d", "", "Only list entries from this day (YYYY-MM-DD).")
	fs.StringVar(&cfg.Filter, "filter", "", "Fuzzy filter over prompts and file paths.")
}

func BindDiffFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.Unified, "unified", "u", false, "Print a unified diff instead of the line comparison.")
}

func BindConfigInitFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Overwrite, "force", false, "Overwrite an existing config file.")
}

// Validate checks flag combinations.
func (c *Config) Validate() error {
	if c.NoConfig && c.ConfigPath != "" {
		return fmt.Errorf("error: --config and --no-config are mutually exclusive")
	}
	if c.Date != "" {
		if _, err := time.Parse("2006-01-02", c.Date); err != nil {
			return fmt.Errorf("error: --date must be YYYY-MM-DD")
		}
	}
	return nil
}

// Settings loads the config file and applies flags that were set
// explicitly on top of it.
func (c *Config) Settings(fs *pflag.FlagSet) (config.Config, error) {
	var (
		settings config.Config
		err      error
	)
	if c.NoConfig {
		settings = config.DefaultConfig()
	} else {
		settings, err = config.Load(c.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if fs.Changed("data-dir") {
		settings.DataDir = c.DataDir
	}
	if fs.Changed("theme") {
		settings.Theme = c.Theme
	}
	if fs.Changed("log-level") {
		settings.Log.Level = c.LogLevel
	}
	if fs.Changed("log-file") {
		settings.Log.File = c.LogFile
	}
	if err := settings.Validate(); err != nil {
		return config.Config{}, err
	}
	return settings, nil
}
