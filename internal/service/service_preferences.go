package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/models"
)

// Preferences returns the preferences in effect.
func (s *VaultService) Preferences() models.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// SetPreferences validates and applies prefs, then persists them to the
// settings table. Persisting is best effort: a storage failure is logged
// and the new values stay in effect for this run.
func (s *VaultService) SetPreferences(ctx context.Context, prefs models.Preferences) error {
	if err := s.validatePreferences(prefs); err != nil {
		return err
	}

	s.applyPreferences(prefs)

	for key, value := range map[string]int{
		models.SettingClipboardTimeout: prefs.ClipboardTimeout,
		models.SettingAutoLockMinutes:  prefs.AutoLockMinutes,
	} {
		err := s.settings.PutSetting(ctx, models.Setting{Key: key, Value: []byte(strconv.Itoa(value))})
		if err != nil {
			s.logger.Warn().Err(err).
				Str("func", "VaultService.SetPreferences").
				Str("key", key).
				Msg("failed to persist preference")
		}
	}
	return nil
}

// LoadPreferences reads the persisted preferences and applies them. Keys
// that are missing, unreadable or out of range keep their current value.
func (s *VaultService) LoadPreferences(ctx context.Context) models.Preferences {
	prefs := s.Preferences()

	if v, ok := s.loadInt(ctx, models.SettingClipboardTimeout); ok {
		prefs.ClipboardTimeout = v
	}
	if v, ok := s.loadInt(ctx, models.SettingAutoLockMinutes); ok {
		prefs.AutoLockMinutes = v
	}

	if err := s.validatePreferences(prefs); err != nil {
		s.logger.Warn().Err(err).
			Str("func", "VaultService.LoadPreferences").
			Msg("ignoring stored preferences")
		return s.Preferences()
	}

	s.applyPreferences(prefs)
	return prefs
}

func (s *VaultService) loadInt(ctx context.Context, key string) (int, bool) {
	setting, err := s.settings.GetSetting(ctx, key)
	if errors.Is(err, store.ErrSettingNotFound) {
		return 0, false
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("func", "VaultService.loadInt").
			Str("key", key).
			Msg("failed to read preference")
		return 0, false
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(setting.Value)))
	if err != nil {
		s.logger.Warn().Err(err).
			Str("func", "VaultService.loadInt").
			Str("key", key).
			Msg("stored preference is not a number")
		return 0, false
	}
	return v, true
}

func (s *VaultService) applyPreferences(prefs models.Preferences) {
	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()

	s.session.SetInactivityTimeout(prefs.InactivityTimeout())
}

func (s *VaultService) validatePreferences(prefs models.Preferences) error {
	err := s.validate.Struct(prefs)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidPreferences, strings.Join(parts, "; "))
	}
	return fmt.Errorf("%w: %w", ErrInvalidPreferences, err)
}
