package config

import "errors"

// Validation errors returned by [Config.validate] when a configuration group
// is incomplete or out of range.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSessionConfigs indicates a clipboard timeout or auto-lock
	// period outside the accepted range.
	ErrInvalidSessionConfigs = errors.New("invalid session configuration")
	// ErrInvalidKDFConfigs indicates Argon2id parameters below the minimum.
	ErrInvalidKDFConfigs = errors.New("invalid kdf configuration")
	// ErrInvalidLogConfigs indicates an unknown log level.
	ErrInvalidLogConfigs = errors.New("invalid log configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero watch interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrUnsupportedConfigFile is returned for config files whose extension
	// is neither JSON nor YAML.
	ErrUnsupportedConfigFile = errors.New("unsupported config file format")
)
