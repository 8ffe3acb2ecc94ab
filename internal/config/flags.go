package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags holds the command-line configuration flags. Only flags the user
// actually passed take part in the merge, so a flag's default never
// overrides the file or the environment.
type Flags struct {
	fs *pflag.FlagSet

	dbPath           string
	configFile       string
	clipboardTimeout int
	autoLockMinutes  int
	logLevel         string
	logFile          string
	kdfTime          uint32
	kdfMemoryKiB     uint32
	kdfThreads       uint8
	watchInterval    time.Duration
}

// RegisterFlags defines the configuration flags on fs.
//
// Flags:
//
//	--db               vault database path
//	-c/--config        JSON or YAML config file path
//	--clipboard-timeout seconds a copied secret stays on the clipboard
//	--auto-lock        minutes of inactivity before the vault locks
//	--log-level        trace, debug, info, warn, error or disabled
//	--log-file         log file path
//	--kdf-time         Argon2id iterations
//	--kdf-memory       Argon2id memory in KiB
//	--kdf-threads      Argon2id parallelism
//	--watch-interval   session watcher tick (e.g., "1s")
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVar(&f.dbPath, "db", "", "Vault database path")
	fs.StringVarP(&f.configFile, "config", "c", "", "JSON or YAML config file path")
	fs.IntVar(&f.clipboardTimeout, "clipboard-timeout", 0, "Seconds a copied secret stays on the clipboard (0 clears it at once)")
	fs.IntVar(&f.autoLockMinutes, "auto-lock", 0, "Minutes of inactivity before locking (0 disables)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level")
	fs.StringVar(&f.logFile, "log-file", "", "Log file path")
	fs.Uint32Var(&f.kdfTime, "kdf-time", 0, "Argon2id iterations")
	fs.Uint32Var(&f.kdfMemoryKiB, "kdf-memory", 0, "Argon2id memory in KiB")
	fs.Uint8Var(&f.kdfThreads, "kdf-threads", 0, "Argon2id parallelism")
	fs.DurationVar(&f.watchInterval, "watch-interval", 0, "Session watcher interval (e.g., 1s, 500ms)")

	return f
}

// structured returns the flags the user set as a configuration source.
func (f *Flags) structured() *StructuredConfig {
	cfg := new(StructuredConfig)
	if f == nil || f.fs == nil {
		return cfg
	}

	changed := f.fs.Changed
	if changed("db") {
		cfg.Storage.Path = f.dbPath
	}
	if changed("config") {
		cfg.ConfigFile = f.configFile
	}
	if changed("clipboard-timeout") {
		cfg.Session.ClipboardTimeout = ptr(f.clipboardTimeout)
	}
	if changed("auto-lock") {
		cfg.Session.AutoLockMinutes = ptr(f.autoLockMinutes)
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if changed("kdf-time") {
		cfg.KDF.Time = ptr(f.kdfTime)
	}
	if changed("kdf-memory") {
		cfg.KDF.MemoryKiB = ptr(f.kdfMemoryKiB)
	}
	if changed("kdf-threads") {
		cfg.KDF.Threads = ptr(f.kdfThreads)
	}
	if changed("watch-interval") {
		cfg.Workers.WatchInterval = Duration(f.watchInterval)
	}

	return cfg
}

func ptr[T any](v T) *T {
	return &v
}
