package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/cryptosafe/internal/logger"
)

// DefaultWatchInterval is how often the session timers are polled.
const DefaultWatchInterval = time.Second

// SessionWatcher polls the session timers on a ticker so that an expired
// clipboard gets cleared and an idle session gets locked without user
// interaction. It is the only goroutine the vault runs on its own.
type SessionWatcher struct {
	ticker   Ticker
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSessionWatcher creates a watcher that calls ticker.Tick every
// interval. A zero or negative interval means [DefaultWatchInterval]. The
// watcher is idle until Start is called.
func NewSessionWatcher(ticker Ticker, interval time.Duration, log *logger.Logger) *SessionWatcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SessionWatcher{ticker: ticker, interval: interval, logger: log}
}

// Start implements [Worker]. It stops a previously running loop first.
func (w *SessionWatcher) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		w.logger.Debug().Str("func", "SessionWatcher.Start").Dur("interval", w.interval).Msg("session watcher started")
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				w.tick(jobCtx)
			}
		}
	}()
}

// Stop implements [Worker].
func (w *SessionWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// tick keeps a panicking Tick from taking the process down.
func (w *SessionWatcher) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Str("func", "SessionWatcher.tick").Interface("panic", r).Msg("session tick panicked")
		}
	}()
	w.ticker.Tick(ctx)
}
