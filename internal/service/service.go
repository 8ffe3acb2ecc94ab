// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the vault use cases on top of the storage,
// crypto, event and session packages: first-run setup, unlock and lock,
// entry management, clipboard handling and preferences.
package service

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/cryptosafe/internal/clipboard"
	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/internal/events"
	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/internal/session"
	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/models"
)

// Deps are the collaborators of a [VaultService]. Every field is required
// except Logger.
type Deps struct {
	Entries   EntryRepository
	Settings  store.SettingsRepository
	Audit     AuditReader
	Keys      KeyDeriver
	Cipher    crypto.Cipher
	Bus       *events.Bus
	Session   *session.State
	Clipboard clipboard.Writer

	// Preferences seed the in-memory preferences until LoadPreferences or
	// SetPreferences replaces them.
	Preferences models.Preferences

	Logger *logger.Logger
}

// VaultService is the single entry point UI layers talk to.
type VaultService struct {
	entries   EntryRepository
	settings  store.SettingsRepository
	audit     AuditReader
	keys      KeyDeriver
	cipher    crypto.Cipher
	bus       *events.Bus
	session   *session.State
	clipboard clipboard.Writer
	validate  *validator.Validate

	mu    sync.RWMutex
	prefs models.Preferences

	logger *logger.Logger
}

// NewVaultService wires a VaultService. The initial preferences are applied
// to the session right away.
func NewVaultService(deps Deps) *VaultService {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	s := &VaultService{
		entries:   deps.Entries,
		settings:  deps.Settings,
		audit:     deps.Audit,
		keys:      deps.Keys,
		cipher:    deps.Cipher,
		bus:       deps.Bus,
		session:   deps.Session,
		clipboard: deps.Clipboard,
		validate:  validator.New(),
		prefs:     deps.Preferences,
		logger:    log,
	}
	if s.validate.Struct(s.prefs) != nil {
		s.prefs = models.DefaultPreferences()
	}
	s.session.SetInactivityTimeout(s.prefs.InactivityTimeout())

	return s
}

// Session exposes the session state, mostly for status displays.
func (s *VaultService) Session() *session.State {
	return s.session
}

// unlockedKey returns a copy of the session key, touching activity on the
// way. The caller must wipe it.
func (s *VaultService) unlockedKey() ([]byte, error) {
	if s.session.IsLocked() {
		return nil, ErrLocked
	}
	key := s.session.Key()
	if key == nil {
		return nil, ErrLocked
	}
	s.session.TouchActivity()
	return key, nil
}
