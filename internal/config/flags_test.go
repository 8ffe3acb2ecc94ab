package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags_Structured(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *StructuredConfig)
	}{
		{
			name: "no flags leaves every field unset",
			args: nil,
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, &StructuredConfig{}, cfg)
			},
		},
		{
			name: "all flags",
			args: []string{
				"--db", "/tmp/vault.db",
				"-c", "/etc/cryptosafe.yaml",
				"--clipboard-timeout", "60",
				"--auto-lock", "15",
				"--log-level", "trace",
				"--log-file", "/tmp/cs.log",
				"--kdf-time", "2",
				"--kdf-memory", "8192",
				"--kdf-threads", "1",
				"--watch-interval", "250ms",
			},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "/tmp/vault.db", cfg.Storage.Path)
				assert.Equal(t, "/etc/cryptosafe.yaml", cfg.ConfigFile)
				require.NotNil(t, cfg.Session.ClipboardTimeout)
				assert.Equal(t, 60, *cfg.Session.ClipboardTimeout)
				require.NotNil(t, cfg.Session.AutoLockMinutes)
				assert.Equal(t, 15, *cfg.Session.AutoLockMinutes)
				assert.Equal(t, "trace", cfg.Log.Level)
				assert.Equal(t, "/tmp/cs.log", cfg.Log.File)
				require.NotNil(t, cfg.KDF.Time)
				assert.Equal(t, uint32(2), *cfg.KDF.Time)
				require.NotNil(t, cfg.KDF.MemoryKiB)
				assert.Equal(t, uint32(8192), *cfg.KDF.MemoryKiB)
				require.NotNil(t, cfg.KDF.Threads)
				assert.Equal(t, uint8(1), *cfg.KDF.Threads)
				assert.Equal(t, Duration(250*time.Millisecond), cfg.Workers.WatchInterval)
			},
		},
		{
			name: "explicit zero is kept",
			args: []string{"--clipboard-timeout", "0"},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				require.NotNil(t, cfg.Session.ClipboardTimeout)
				assert.Equal(t, 0, *cfg.Session.ClipboardTimeout)
				assert.Nil(t, cfg.Session.AutoLockMinutes)
			},
		},
		{
			name: "long config alias",
			args: []string{"--config", "cfg.json"},
			verify: func(t *testing.T, cfg *StructuredConfig) {
				assert.Equal(t, "cfg.json", cfg.ConfigFile)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, parsedFlags(t, tt.args...).structured())
		})
	}
}

func TestFlags_NilReceiver(t *testing.T) {
	var f *Flags
	assert.Equal(t, &StructuredConfig{}, f.structured())
}

func TestRegisterFlags_RejectsBadValue(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	assert.Error(t, fs.Parse([]string{"--kdf-threads", "300"}))
}
