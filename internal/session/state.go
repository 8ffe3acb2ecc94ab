// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session holds the in-memory state of one running vault: whether
// it is locked, the derived key while it is not, what the vault put on the
// clipboard and when that expires, and when the user last did something.
//
// Timers are passive. Nothing fires on its own; callers poll
// [State.ClipboardTimerRemaining] and [State.IsInactivityExpired].
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/internal/events"
)

// DefaultInactivityTimeout applies until the preferences say otherwise.
const DefaultInactivityTimeout = 5 * time.Minute

// State is safe for concurrent use. Events are published after the
// internal lock is released, so bus handlers may query the State.
type State struct {
	mu sync.Mutex

	locked    bool
	sessionID string
	key       []byte

	clipboard      string
	clipboardUntil time.Time
	clipboardTimed bool

	lastActivity      time.Time
	inactivityTimeout time.Duration

	now func() time.Time
	bus *events.Bus
}

// Option customises a State.
type Option func(*State)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInactivityTimeout sets the initial auto-lock period.
func WithInactivityTimeout(d time.Duration) Option {
	return func(s *State) {
		s.inactivityTimeout = max(d, 0)
	}
}

// New returns a locked State that publishes its transitions on bus.
func New(bus *events.Bus, opts ...Option) *State {
	s := &State{
		locked:            true,
		inactivityTimeout: DefaultInactivityTimeout,
		now:               time.Now,
		bus:               bus,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsLocked reports whether the session is locked.
func (s *State) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// SessionID returns the id of the current unlocked session, or "" while
// locked.
func (s *State) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// SetLocked moves the session to the given state.
//
// Locking wipes the held key, forgets the last activity and publishes
// user_logged_out. Unlocking starts a new session id, records activity now
// and publishes user_logged_in.
func (s *State) SetLocked(ctx context.Context, locked bool) {
	s.mu.Lock()
	var event, sessionID string
	if locked {
		crypto.Wipe(s.key)
		s.key = nil
		sessionID = s.sessionID
		s.sessionID = ""
		s.lastActivity = time.Time{}
		event = events.UserLoggedOut
	} else {
		s.sessionID = uuid.NewString()
		sessionID = s.sessionID
		s.lastActivity = s.now()
		event = events.UserLoggedIn
	}
	s.locked = locked
	s.mu.Unlock()

	s.publish(ctx, event, events.Payload{events.KeySessionID: sessionID})
}

// SetKey hands the derived vault key to the session. The State keeps its
// own copy; the caller remains responsible for its buffer.
func (s *State) SetKey(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	crypto.Wipe(s.key)
	s.key = append([]byte(nil), key...)
}

// Key returns a copy of the held key, or nil when there is none. Callers
// should wipe the copy when done with it.
func (s *State) Key() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.key) == 0 {
		return nil
	}
	return append([]byte(nil), s.key...)
}

// ClipboardContent returns what the vault last put on the clipboard.
func (s *State) ClipboardContent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clipboard
}

// SetClipboardContent records content as placed on the clipboard.
//
// Non-empty content starts a timer of timeout, already expired when timeout
// <= 0, and publishes clipboard_copied with the timeout in seconds. Empty content
// clears the record and the timer and publishes clipboard_cleared.
func (s *State) SetClipboardContent(ctx context.Context, content string, timeout time.Duration) {
	s.mu.Lock()
	var (
		event   string
		payload events.Payload
	)
	if content != "" {
		s.clipboard = content
		timeout = max(timeout, 0)
		s.clipboardTimed = true
		s.clipboardUntil = s.now().Add(timeout)
		event = events.ClipboardCopied
		payload = events.Payload{events.KeyTimeoutSeconds: int(timeout / time.Second)}
	} else {
		s.clipboard = ""
		s.clipboardTimed = false
		s.clipboardUntil = time.Time{}
		event = events.ClipboardCleared
		payload = events.Payload{}
	}
	s.mu.Unlock()

	s.publish(ctx, event, payload)
}

// ClipboardTimerRemaining returns the time left before the clipboard
// should be cleared, never negative. ok is false when no timer runs.
func (s *State) ClipboardTimerRemaining() (remaining time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clipboardTimed {
		return 0, false
	}
	return max(s.clipboardUntil.Sub(s.now()), 0), true
}

// IsClipboardExpired reports whether a running clipboard timer has reached
// zero.
func (s *State) IsClipboardExpired() bool {
	remaining, ok := s.ClipboardTimerRemaining()
	return ok && remaining == 0
}

// TouchActivity records user activity now.
func (s *State) TouchActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.now()
}

// SetInactivityTimeout changes the auto-lock period. Zero or a negative
// value disables auto-lock.
func (s *State) SetInactivityTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inactivityTimeout = max(d, 0)
}

// InactivityTimeout returns the auto-lock period.
func (s *State) InactivityTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inactivityTimeout
}

// IsInactivityExpired is true only for an unlocked session with auto-lock
// enabled whose last activity is at least the timeout ago.
func (s *State) IsInactivityExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked || s.inactivityTimeout <= 0 {
		return false
	}
	return s.now().Sub(s.lastActivity) >= s.inactivityTimeout
}

func (s *State) publish(ctx context.Context, event string, payload events.Payload) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event, payload)
}
