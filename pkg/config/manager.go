package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lerenn/pkgm/configs"
	"github.com/lerenn/pkgm/pkg/fs"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=manager.go -destination=mockmanager.gen.go -package=config

// Manager interface provides configuration management functionality with an embedded config path.
type Manager interface {
	GetConfig() (Config, error)
	GetConfigWithFallback() (Config, error)
	SaveConfig(config Config) error
	CreateConfigDirectory() error
	GetConfigPath() string
	DefaultConfig() Config
}

// realManager manages configuration with an embedded config path.
type realManager struct {
	fs         fs.FS
	configPath string
	lookupEnv  func() map[string]string
}

// NewManager creates a new Manager instance with the specified config path.
func NewManager(fsys fs.FS, configPath string) Manager {
	if fsys == nil {
		fsys = fs.NewFS()
	}
	return &realManager{
		fs:         fsys,
		configPath: configPath,
		lookupEnv:  func() map[string]string { return env.ToMap(os.Environ()) },
	}
}

// GetConfig loads the configuration file over the defaults, then applies PKGM_* environment
// variables.
func (c *realManager) GetConfig() (Config, error) {
	path, err := c.fs.ExpandPath(c.configPath)
	if err != nil {
		return Config{}, err
	}

	exists, err := c.fs.Exists(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to check config file: %w", err)
	}
	if !exists {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigNotInitialized, path)
	}

	data, err := c.fs.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	config := c.DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigFileParse, err)
	}

	return c.finalize(config)
}

// GetConfigWithFallback loads the configuration, falling back to the defaults when the file
// does not exist. Environment variables apply in both cases.
func (c *realManager) GetConfigWithFallback() (Config, error) {
	config, err := c.GetConfig()
	if err == nil {
		return config, nil
	}

	exists, existsErr := c.configExists()
	if existsErr != nil || exists {
		return Config{}, err
	}
	return c.finalize(c.DefaultConfig())
}

func (c *realManager) configExists() (bool, error) {
	path, err := c.fs.ExpandPath(c.configPath)
	if err != nil {
		return false, err
	}
	return c.fs.Exists(path)
}

func (c *realManager) finalize(config Config) (Config, error) {
	if err := env.ParseWithOptions(&config, env.Options{
		Prefix:      EnvPrefix,
		Environment: c.lookupEnv(),
	}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigEnvParse, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to the embedded config path.
func (c *realManager) SaveConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.CreateConfigDirectory(); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	path, err := c.fs.ExpandPath(c.configPath)
	if err != nil {
		return err
	}
	if err := c.fs.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// CreateConfigDirectory creates the configuration directory structure.
func (c *realManager) CreateConfigDirectory() error {
	path, err := c.fs.ExpandPath(c.configPath)
	if err != nil {
		return err
	}
	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// GetConfigPath returns the embedded config path.
func (c *realManager) GetConfigPath() string {
	return c.configPath
}

// DefaultConfig returns the embedded default configuration.
func (c *realManager) DefaultConfig() Config {
	var config Config
	if err := yaml.Unmarshal(configs.DefaultConfigYAML, &config); err != nil {
		panic(fmt.Sprintf("embedded default configuration is invalid: %v", err))
	}
	return config
}
