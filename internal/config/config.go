// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/models"
)

// Default file names, relative to the per-user config directory.
const (
	appDirName      = "cryptosafe"
	defaultDBName   = "cryptosafe.db"
	defaultLogName  = "cryptosafe.log"
	defaultLogLevel = "info"
)

// StructuredConfig is one configuration source as parsed from a file, the
// environment or the command line. Fields a source did not set stay at
// their zero value (nil for the pointer fields, where zero is a legal
// setting), so sources can be merged without clobbering each other.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: environment variable name, after the CRYPTOSAFE_ prefix.
//   - json/yaml: keys in the config file.
type StructuredConfig struct {
	// Storage locates the vault database.
	Storage StorageSource `envPrefix:"DB_" json:"storage" yaml:"storage"`

	// Session holds the clipboard and auto-lock preferences.
	Session SessionSource `json:"session" yaml:"session"`

	// KDF tunes the Argon2id key derivation.
	KDF KDFSource `envPrefix:"KDF_" json:"kdf" yaml:"kdf"`

	// Log configures the application log.
	Log LogSource `envPrefix:"LOG_" json:"log" yaml:"log"`

	// Workers configures the background session watcher.
	Workers WorkersSource `envPrefix:"WORKERS_" json:"workers" yaml:"workers"`

	// ConfigFile is the path of the JSON or YAML config file. It is only
	// read from the environment and the command line.
	// Env: CRYPTOSAFE_CONFIG
	ConfigFile string `env:"CONFIG" json:"-" yaml:"-"`
}

// StorageSource is the storage section of a configuration source.
type StorageSource struct {
	// Path is the SQLite database file.
	// Env: CRYPTOSAFE_DB_PATH
	Path string `env:"PATH" json:"path" yaml:"path"`
}

// SessionSource is the session section of a configuration source.
type SessionSource struct {
	// Env: CRYPTOSAFE_CLIPBOARD_TIMEOUT
	ClipboardTimeout *int `env:"CLIPBOARD_TIMEOUT" json:"clipboard_timeout" yaml:"clipboard_timeout"`
	// Env: CRYPTOSAFE_AUTO_LOCK_MINUTES
	AutoLockMinutes *int `env:"AUTO_LOCK_MINUTES" json:"auto_lock_minutes" yaml:"auto_lock_minutes"`
}

// KDFSource is the key derivation section of a configuration source.
type KDFSource struct {
	// Env: CRYPTOSAFE_KDF_TIME
	Time *uint32 `env:"TIME" json:"time" yaml:"time"`
	// Env: CRYPTOSAFE_KDF_MEMORY_KIB
	MemoryKiB *uint32 `env:"MEMORY_KIB" json:"memory_kib" yaml:"memory_kib"`
	// Env: CRYPTOSAFE_KDF_THREADS
	Threads *uint8 `env:"THREADS" json:"threads" yaml:"threads"`
}

// LogSource is the log section of a configuration source.
type LogSource struct {
	// Env: CRYPTOSAFE_LOG_LEVEL
	Level string `env:"LEVEL" json:"level" yaml:"level"`
	// Env: CRYPTOSAFE_LOG_FILE
	File string `env:"FILE" json:"file" yaml:"file"`
}

// WorkersSource is the workers section of a configuration source.
type WorkersSource struct {
	// Env: CRYPTOSAFE_WORKERS_WATCH_INTERVAL
	WatchInterval Duration `env:"WATCH_INTERVAL" json:"watch_interval" yaml:"watch_interval"`
}

// Config is the final, validated configuration the application runs with.
type Config struct {
	Storage Storage
	Session Session
	KDF     KDF
	Log     Log
	Workers Workers

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string
}

// Storage locates the vault database.
type Storage struct {
	Path string `validate:"required"`
}

// Session holds the clipboard and auto-lock preferences.
type Session struct {
	// ClipboardTimeout is in seconds; 0 clears copied secrets on the next tick.
	ClipboardTimeout int `validate:"min=0,max=300"`
	// AutoLockMinutes is the idle period before locking; 0 disables it.
	AutoLockMinutes int `validate:"min=0,max=120"`
}

// KDF tunes the Argon2id key derivation.
type KDF struct {
	Time      uint32 `validate:"min=1"`
	MemoryKiB uint32 `validate:"min=8"`
	Threads   uint8  `validate:"min=1"`
}

// Log configures the application log.
type Log struct {
	Level string `validate:"oneof=trace debug info warn error disabled"`
	File  string
}

// Workers configures the background session watcher.
type Workers struct {
	WatchInterval time.Duration `validate:"gt=0"`
}

// Preferences returns the session section as vault preferences.
func (c *Config) Preferences() models.Preferences {
	return models.Preferences{
		ClipboardTimeout: c.Session.ClipboardTimeout,
		AutoLockMinutes:  c.Session.AutoLockMinutes,
	}
}

// KDFParams returns the KDF section as key manager parameters.
func (c *Config) KDFParams() crypto.KDFParams {
	return crypto.KDFParams{
		Time:      c.KDF.Time,
		MemoryKiB: c.KDF.MemoryKiB,
		Threads:   c.KDF.Threads,
	}
}

// Load assembles the configuration from the config file, the environment
// and flags (which may be nil), applies defaults and validates the result.
func Load(flags *Flags) (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flags).
		withFile().
		build()
}

// DefaultDir returns the per-user directory holding the vault and its log.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return appDirName
		}
		return filepath.Join(home, "."+appDirName)
	}
	return filepath.Join(dir, appDirName)
}

// resolve turns a merged source into the final Config, filling defaults.
func resolve(src *StructuredConfig) *Config {
	kdf := crypto.DefaultKDFParams()
	prefs := models.DefaultPreferences()

	cfg := &Config{
		Storage: Storage{Path: src.Storage.Path},
		Session: Session{
			ClipboardTimeout: valueOr(src.Session.ClipboardTimeout, prefs.ClipboardTimeout),
			AutoLockMinutes:  valueOr(src.Session.AutoLockMinutes, prefs.AutoLockMinutes),
		},
		KDF: KDF{
			Time:      valueOr(src.KDF.Time, kdf.Time),
			MemoryKiB: valueOr(src.KDF.MemoryKiB, kdf.MemoryKiB),
			Threads:   valueOr(src.KDF.Threads, kdf.Threads),
		},
		Log: Log{
			Level: src.Log.Level,
			File:  src.Log.File,
		},
		Workers: Workers{
			WatchInterval: time.Duration(src.Workers.WatchInterval),
		},
		ConfigFile: src.ConfigFile,
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(DefaultDir(), defaultDBName)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(filepath.Dir(cfg.Storage.Path), defaultLogName)
	}
	if cfg.Workers.WatchInterval == 0 {
		cfg.Workers.WatchInterval = time.Second
	}

	return cfg
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// String renders the configuration for `settings show`-style output.
func (c *Config) String() string {
	return fmt.Sprintf(
		"database: %s\nclipboard timeout: %ds\nauto-lock: %dm\nkdf: time=%d memory=%dKiB threads=%d\nlog: %s (%s)",
		c.Storage.Path,
		c.Session.ClipboardTimeout,
		c.Session.AutoLockMinutes,
		c.KDF.Time, c.KDF.MemoryKiB, c.KDF.Threads,
		c.Log.File, c.Log.Level,
	)
}
