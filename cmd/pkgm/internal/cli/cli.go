// Package cli provides the global flags and the engine wiring shared by pkgm commands.
package cli

import (
	"os"
	"path/filepath"

	"github.com/lerenn/pkgm/pkg/config"
	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/logger"
)

var (
	// Quiet suppresses all output except errors.
	Quiet bool
	// Verbose enables verbose output and is passed to plugins.
	Verbose bool
	// ConfigPath specifies a custom config file path.
	ConfigPath string
	// PluginDirs replaces the configured plugin directories when set.
	PluginDirs []string
)

// GetConfigPath returns the config file path in use.
func GetConfigPath() string {
	if ConfigPath != "" {
		return ConfigPath
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".pkgm", "config.yaml")
}

// NewConfigManager creates a new Manager with the appropriate config path.
func NewConfigManager() config.Manager {
	return config.NewManager(fs.NewFS(), GetConfigPath())
}

// LoadConfig loads the configuration, falling back to the defaults when no file exists, and
// applies the flags overriding it.
func LoadConfig() (config.Config, error) {
	cfg, err := NewConfigManager().GetConfigWithFallback()
	if err != nil {
		return config.Config{}, err
	}
	return applyFlags(cfg), nil
}

func applyFlags(cfg config.Config) config.Config {
	if len(PluginDirs) > 0 {
		cfg.PluginDirs = append([]string(nil), PluginDirs...)
	}
	switch {
	case Quiet:
		cfg.Log.Level = logger.LevelError
	case Verbose:
		cfg.Log.Level = logger.LevelDebug
	}
	return cfg
}
