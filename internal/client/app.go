package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/cryptosafe/internal/audit"
	"github.com/MKhiriev/cryptosafe/internal/clipboard"
	"github.com/MKhiriev/cryptosafe/internal/config"
	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/internal/events"
	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/internal/service"
	"github.com/MKhiriev/cryptosafe/internal/session"
	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/internal/vault"
	"github.com/MKhiriev/cryptosafe/internal/workers"
)

// LoggerRole is the "role" field of every log line the vault writes.
const LoggerRole = "cryptosafe"

var _ Client = (*App)(nil)

// App owns the vault runtime: storage, event bus, audit subscriber, vault
// service and the session watcher.
type App struct {
	cfg     *config.Config
	storage *store.Storage
	bus     *events.Bus
	audit   *audit.Log
	service *service.VaultService
	workers *workers.Workers

	startOnce sync.Once
	closeOnce sync.Once
	closeErr  error

	logger *logger.Logger
}

// Option customises [NewApp].
type Option func(*options)

type options struct {
	clipboard clipboard.Writer
	now       func() time.Time
}

// WithClipboard replaces the system clipboard.
func WithClipboard(w clipboard.Writer) Option {
	return func(o *options) {
		o.clipboard = w
	}
}

// WithClock replaces the wall clock of the session, vault and audit log.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg config.Log) *logger.Logger {
	return logger.NewFileLogger(LoggerRole, cfg.File).WithLevel(cfg.Level)
}

// NewApp opens the vault database, applies the schema and wires every
// component. The workers are not started until [App.Start].
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if log == nil {
		log = logger.Nop()
	}

	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.clipboard == nil {
		o.clipboard = clipboard.NewSystem()
	}

	log.Info().Str("db", cfg.Storage.Path).Msg("opening vault")

	storage, err := store.Open(ctx, cfg.Storage.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err = storage.InitSchema(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	bus := events.NewBus(log)
	auditLog := audit.RegisterHandlers(bus, store.NewAuditRepository(storage, log), log, audit.WithClock(o.now))
	cipher := crypto.NewAESGCMCipher()

	state := session.New(bus, session.WithClock(o.now))

	svc := service.NewVaultService(service.Deps{
		Entries:     vault.NewRepository(storage, cipher, log, vault.WithClock(o.now)),
		Settings:    store.NewSettingsRepository(storage, log),
		Audit:       auditLog,
		Keys:        crypto.NewKeyManager(cfg.KDFParams(), ""),
		Cipher:      cipher,
		Bus:         bus,
		Session:     state,
		Clipboard:   o.clipboard,
		Preferences: cfg.Preferences(),
		Logger:      log,
	})

	app := &App{
		cfg:     cfg,
		storage: storage,
		bus:     bus,
		audit:   auditLog,
		service: svc,
		logger:  log,
	}
	app.workers = workers.New(
		workers.NewSessionWatcher(workers.TickerFunc(app.tick), cfg.Workers.WatchInterval, log),
	)

	return app, nil
}

// Service returns the vault service.
func (a *App) Service() *service.VaultService {
	return a.service
}

// Storage returns the open vault storage.
func (a *App) Storage() *store.Storage {
	return a.storage
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Start launches the background workers. Repeated calls are no-ops.
func (a *App) Start(ctx context.Context) {
	a.startOnce.Do(func() {
		a.workers.Start(ctx)
	})
}

// HoldClipboard keeps the process alive while a copied secret is on the
// clipboard. It returns once the session watcher has cleared it, or when
// ctx is done, in which case the clipboard is cleared right away.
func (a *App) HoldClipboard(ctx context.Context) {
	a.Start(ctx)

	ticker := time.NewTicker(a.cfg.Workers.WatchInterval)
	defer ticker.Stop()

	for {
		if a.service.Session().ClipboardContent() == "" {
			return
		}
		select {
		case <-ctx.Done():
			a.service.ClearClipboard(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
		}
	}
}

// Close locks the session, stops the workers and closes storage. It is safe
// to call more than once.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.workers.Stop()
		if !a.service.IsLocked() {
			a.service.Lock(ctx)
		}
		a.closeErr = a.storage.Close()
		a.logger.Info().Msg("vault closed")
	})
	return a.closeErr
}

func (a *App) tick(ctx context.Context) {
	res := a.service.Tick(ctx)
	if res.ClipboardCleared {
		a.logger.Info().Str("func", "App.tick").Msg("clipboard timer expired, clipboard cleared")
	}
	if res.Locked {
		a.logger.Info().Str("func", "App.tick").Msg("session locked after inactivity")
	}
}
