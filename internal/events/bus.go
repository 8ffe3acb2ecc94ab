// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/cryptosafe/internal/logger"
)

// Handler reacts to a published event. A returned error is logged by the
// bus and otherwise ignored.
type Handler func(ctx context.Context, event string, payload Payload) error

// Bus dispatches events to subscribed handlers. Dispatch is synchronous:
// Publish runs every handler on the caller's goroutine, in registration
// order, before it returns. A Bus is created once by the application and
// passed to every component that publishes or subscribes.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *logger.Logger
}

// NewBus constructs an empty Bus. log receives handler failures.
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   log,
	}
}

// Subscribe registers h for event. Handlers registered for the same event
// are invoked in the order they were subscribed. A nil handler is ignored.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// Publish delivers payload to every handler subscribed to event. Handler
// errors and panics are logged and suppressed so that one failing
// subscriber neither blocks the others nor reaches the publisher.
// Publishing an event without subscribers is a no-op. A nil payload is
// delivered as an empty one.
func (b *Bus) Publish(ctx context.Context, event string, payload Payload) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}
	if payload == nil {
		payload = Payload{}
	}

	for i, h := range handlers {
		if err := b.dispatch(ctx, h, event, payload); err != nil {
			// explicit policy: the failure stays with the subscriber
			b.logger.Warn().Err(err).
				Str("func", "Bus.Publish").
				Str("event", event).
				Int("handler", i).
				Msg("event handler failed")
		}
	}
}

// HandlerCount returns the number of handlers subscribed to event.
func (b *Bus) HandlerCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}

func (b *Bus) dispatch(ctx context.Context, h Handler, event string, payload Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, event, payload)
}
