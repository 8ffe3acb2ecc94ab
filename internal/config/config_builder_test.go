package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func parsedFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that building with no sources yields the
// built-in defaults.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(DefaultDir(), defaultDBName), cfg.Storage.Path)
	assert.Equal(t, 30, cfg.Session.ClipboardTimeout)
	assert.Equal(t, 5, cfg.Session.AutoLockMinutes)
	assert.Equal(t, uint32(3), cfg.KDF.Time)
	assert.Equal(t, uint32(64*1024), cfg.KDF.MemoryKiB)
	assert.Equal(t, uint8(4), cfg.KDF.Threads)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(DefaultDir(), defaultLogName), cfg.Log.File)
	assert.Equal(t, time.Second, cfg.Workers.WatchInterval)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_LaterSourcesOverride verifies merge priority and that an explicit
// zero in a later source beats a non-zero earlier value.
func TestBuild_LaterSourcesOverride(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{
			Storage: StorageSource{Path: "/low/vault.db"},
			Session: SessionSource{ClipboardTimeout: ptr(45), AutoLockMinutes: ptr(10)},
			Log:     LogSource{Level: "debug"},
		},
		&StructuredConfig{
			Storage: StorageSource{Path: "/high/vault.db"},
			Session: SessionSource{AutoLockMinutes: ptr(0)},
		},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "/high/vault.db", cfg.Storage.Path)
	assert.Equal(t, 45, cfg.Session.ClipboardTimeout)
	assert.Equal(t, 0, cfg.Session.AutoLockMinutes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/high/cryptosafe.log", cfg.Log.File)
}

// TestBuild_MergeDoesNotAliasSources verifies that merging leaves the source
// layers untouched.
func TestBuild_MergeDoesNotAliasSources(t *testing.T) {
	low := &StructuredConfig{Session: SessionSource{ClipboardTimeout: ptr(45)}}
	high := &StructuredConfig{Session: SessionSource{ClipboardTimeout: ptr(60)}}

	b := newConfigBuilder()
	b.configs = append(b.configs, low, high)
	_, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, 45, *low.Session.ClipboardTimeout)
	assert.Equal(t, 60, *high.Session.ClipboardTimeout)
}

// TestBuild_ValidationFailure verifies that out-of-range values are rejected
// with the section sentinel.
func TestBuild_ValidationFailure(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		Session: SessionSource{ClipboardTimeout: ptr(301)},
	})

	cfg, err := b.build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidSessionConfigs)
}

// ── withEnv ───────────────────────────────────────────────────────────────────

// TestWithEnv_ReturnsBuilder verifies the fluent interface.
func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withEnv())
}

// TestWithEnv_ReadsEnvVars verifies that environment variables are picked up.
func TestWithEnv_ReadsEnvVars(t *testing.T) {
	setEnvVars(t, map[string]string{
		"CRYPTOSAFE_DB_PATH":   "/env/vault.db",
		"CRYPTOSAFE_LOG_LEVEL": "warn",
	})

	b := newConfigBuilder()
	b.withEnv()

	require.Len(t, b.configs, 1)
	assert.Equal(t, "/env/vault.db", b.configs[0].Storage.Path)
	assert.Equal(t, "warn", b.configs[0].Log.Level)
}

// TestWithEnv_SetsErrorOnBadValue verifies that a malformed number is
// reported and no config is appended.
func TestWithEnv_SetsErrorOnBadValue(t *testing.T) {
	setEnvVars(t, map[string]string{"CRYPTOSAFE_KDF_TIME": "many"})

	b := newConfigBuilder()
	b.withEnv()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

// TestWithFlags_ReturnsBuilder verifies the fluent interface.
func TestWithFlags_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withFlags(nil))
	assert.Len(t, b.configs, 1)
}

// ── withFile ──────────────────────────────────────────────────────────────────

// TestWithFile_NoOp_WhenNoPathSet verifies that withFile does nothing when no
// source names a config file.
func TestWithFile_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withFile()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

// TestWithFile_PrependsConfig verifies that the file becomes the lowest
// priority source.
func TestWithFile_PrependsConfig(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"storage": map[string]any{"path": "/file/vault.db"},
		"log":     map[string]any{"level": "error"},
	})

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		ConfigFile: path,
		Log:        LogSource{Level: "debug"},
	})
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "/file/vault.db", b.configs[0].Storage.Path)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "/file/vault.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.ConfigFile)
}

// TestWithFile_SetsError_WhenFileNotFound verifies that a missing file path
// sets b.err.
func TestWithFile_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		ConfigFile: "/nonexistent/config.json",
	})
	b.withFile()

	assert.Error(t, b.err)
}

// TestWithFile_UsesLastPath verifies that when multiple sources name a config
// file, the last non-empty one wins.
func TestWithFile_UsesLastPath(t *testing.T) {
	first := writeTempJSONConfig(t, map[string]any{"log": map[string]any{"level": "trace"}})
	last := writeTempJSONConfig(t, map[string]any{"log": map[string]any{"level": "warn"}})

	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{ConfigFile: first},
		&StructuredConfig{ConfigFile: ""},
		&StructuredConfig{ConfigFile: last},
	)
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 4)
	assert.Equal(t, "warn", b.configs[0].Log.Level)
}

// ── Load ──────────────────────────────────────────────────────────────────────

// TestLoad_Priority verifies file < env < flags end to end.
func TestLoad_Priority(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"storage": map[string]any{"path": "/file/vault.db"},
		"session": map[string]any{"clipboard_timeout": 10, "auto_lock_minutes": 20},
		"log":     map[string]any{"level": "error"},
	})
	setEnvVars(t, map[string]string{
		"CRYPTOSAFE_CONFIG":            path,
		"CRYPTOSAFE_CLIPBOARD_TIMEOUT": "15",
		"CRYPTOSAFE_LOG_LEVEL":         "warn",
	})
	flags := parsedFlags(t, "--log-level", "debug")

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, "/file/vault.db", cfg.Storage.Path)
	assert.Equal(t, 15, cfg.Session.ClipboardTimeout)
	assert.Equal(t, 20, cfg.Session.AutoLockMinutes)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoad_NilFlags verifies that Load works without a flag set.
func TestLoad_NilFlags(t *testing.T) {
	clearEnvVars(t)
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Storage.Path)
}
