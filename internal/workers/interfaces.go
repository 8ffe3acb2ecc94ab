// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// starting and stopping multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Start launches the worker's background processing and returns
// immediately. The work stops when ctx is cancelled or Stop is called.
// Stop blocks until the background goroutine has exited and is safe to
// call on a worker that is not running.
//
// Example implementation:
//
//	type MyWorker struct{ cancel context.CancelFunc }
//
//	func (w *MyWorker) Start(ctx context.Context) {
//	    ctx, w.cancel = context.WithCancel(ctx)
//	    go w.loop(ctx)
//	}
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// Ticker is the periodic work a [SessionWatcher] drives.
type Ticker interface {
	Tick(ctx context.Context)
}

// TickerFunc adapts a plain function to [Ticker].
type TickerFunc func(ctx context.Context)

// Tick calls f(ctx).
func (f TickerFunc) Tick(ctx context.Context) {
	f(ctx)
}
