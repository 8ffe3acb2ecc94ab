// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Default preference values used when neither the config nor the settings
// table provide one.
const (
	DefaultClipboardTimeout = 30
	DefaultAutoLockMinutes  = 5
)

// Preferences are the typed user settings the vault engine consumes.
type Preferences struct {
	// ClipboardTimeout is the number of seconds a copied secret stays on the
	// clipboard. Zero clears it on the next watcher tick.
	ClipboardTimeout int `json:"clipboard_timeout" yaml:"clipboard_timeout" validate:"min=0,max=300"`

	// AutoLockMinutes is the inactivity period after which the session
	// locks itself. Zero disables auto-lock.
	AutoLockMinutes int `json:"auto_lock_minutes" yaml:"auto_lock_minutes" validate:"min=0,max=120"`
}

// DefaultPreferences returns the built-in preference values.
func DefaultPreferences() Preferences {
	return Preferences{
		ClipboardTimeout: DefaultClipboardTimeout,
		AutoLockMinutes:  DefaultAutoLockMinutes,
	}
}

// ClipboardDuration returns ClipboardTimeout as a duration.
func (p Preferences) ClipboardDuration() time.Duration {
	return time.Duration(p.ClipboardTimeout) * time.Second
}

// InactivityTimeout returns AutoLockMinutes as a duration.
func (p Preferences) InactivityTimeout() time.Duration {
	return time.Duration(p.AutoLockMinutes) * time.Minute
}
