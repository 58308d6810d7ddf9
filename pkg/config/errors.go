package config

import "errors"

// Error definitions for config package.
var (
	// Configuration file errors.
	ErrConfigFileParse      = errors.New("failed to parse config file")
	ErrConfigEnvParse       = errors.New("failed to parse environment configuration")
	ErrConfigNotInitialized = errors.New("pkgm configuration not found. Run 'pkgm init' to initialize")

	// Configuration validation errors.
	ErrPluginDirEmpty        = errors.New("plugin_dirs cannot contain empty entries")
	ErrNegativeTimeout       = errors.New("hooks.timeout cannot be negative")
	ErrNegativeConcurrency   = errors.New("hooks.max_concurrency cannot be negative")
	ErrUnknownParallelHook   = errors.New("hooks.parallel contains an unknown hook")
	ErrInvalidLogLevel       = errors.New("log.level must be one of debug, info, warn, error")
	ErrInvalidLogFormat      = errors.New("log.format must be console or json")
	ErrNegativeLogFileLimits = errors.New("log.max_size_mb and log.max_backups cannot be negative")
)
