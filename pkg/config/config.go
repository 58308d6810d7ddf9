// Package config provides configuration management for pkgm.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
)

// EnvPrefix prefixes every environment variable overriding the configuration.
const EnvPrefix = "PKGM_"

// Config represents the application configuration.
type Config struct {
	PluginDirs  []string    `yaml:"plugin_dirs" env:"PLUGIN_DIRS" envSeparator:":"`
	Hooks       HooksConfig `yaml:"hooks" envPrefix:"HOOKS_"`
	Core        CoreConfig  `yaml:"core" envPrefix:"CORE_"`
	HistoryFile string      `yaml:"history_file" env:"HISTORY_FILE"`
	MetricsFile string      `yaml:"metrics_file" env:"METRICS_FILE"`
	Log         LogConfig   `yaml:"log" envPrefix:"LOG_"`
}

// HooksConfig configures hook invocation.
type HooksConfig struct {
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Parallel       []string      `yaml:"parallel" env:"PARALLEL" envSeparator:","`
	MaxConcurrency int           `yaml:"max_concurrency" env:"MAX_CONCURRENCY"`
}

// CoreConfig configures the primary action.
type CoreConfig struct {
	Command []string `yaml:"command" env:"COMMAND" envSeparator:" "`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	Format     string `yaml:"format" env:"FORMAT"`
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
}

// Validate validates the configuration values.
func (c Config) Validate() error {
	for _, dir := range c.PluginDirs {
		if dir == "" {
			return ErrPluginDirEmpty
		}
	}

	if c.Hooks.Timeout < 0 {
		return ErrNegativeTimeout
	}
	if c.Hooks.MaxConcurrency < 0 {
		return ErrNegativeConcurrency
	}
	for _, name := range c.Hooks.Parallel {
		if _, err := hooks.ParseName(name); err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownParallelHook, name)
		}
	}

	levels := []string{logger.LevelDebug, logger.LevelInfo, logger.LevelWarn, logger.LevelError}
	if c.Log.Level != "" && !slices.Contains(levels, c.Log.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if c.Log.Format != "" && c.Log.Format != logger.FormatConsole && c.Log.Format != logger.FormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return ErrNegativeLogFileLimits
	}

	return nil
}

// Policy returns the invocation policy configured for name.
func (c Config) Policy(name hooks.Name) hooks.Policy {
	if slices.Contains(c.Hooks.Parallel, string(name)) {
		return hooks.Parallel(c.Hooks.Timeout, c.Hooks.MaxConcurrency)
	}
	return hooks.Sequential(c.Hooks.Timeout)
}

// Logger returns the logger configuration.
func (c Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}
