package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/models"
)

// verifierPlaintext is sealed with the vault key at setup and opened on
// every unlock to tell a right password from a wrong one.
var verifierPlaintext = []byte("cryptosafe master verifier v1")

// IsInitialized reports whether a master password has been set up.
func (s *VaultService) IsInitialized(ctx context.Context) (bool, error) {
	_, err := s.settings.GetSetting(ctx, models.SettingMasterSalt)
	if errors.Is(err, store.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check master salt: %w", err)
	}
	return true, nil
}

// Setup creates the master password of a fresh vault and leaves the
// session unlocked.
func (s *VaultService) Setup(ctx context.Context, password string) error {
	if err := ValidateMasterPassword(password); err != nil {
		return err
	}

	initialized, err := s.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	salt, err := s.keys.GenerateSalt(0)
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	key, err := s.keys.DeriveKey(password, salt)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer crypto.Wipe(key)

	verifier, err := s.cipher.Encrypt(verifierPlaintext, key)
	if err != nil {
		return fmt.Errorf("seal verifier: %w", err)
	}

	err = s.settings.PutSettings(ctx,
		models.Setting{
			Key:   models.SettingMasterSalt,
			Value: []byte(base64.StdEncoding.EncodeToString(salt)),
		},
		models.Setting{
			Key:       models.SettingMasterVerifier,
			Value:     verifier,
			Encrypted: true,
		},
	)
	if err != nil {
		return fmt.Errorf("store master credentials: %w", err)
	}

	s.logger.Info().Str("func", "VaultService.Setup").Msg("vault initialized")

	s.session.SetKey(key)
	s.session.SetLocked(ctx, false)
	return nil
}

// Unlock derives the vault key from password and unlocks the session.
// Every failure is reported as [ErrCannotUnlock]; the cause is only
// logged.
func (s *VaultService) Unlock(ctx context.Context, password string) error {
	key, err := s.deriveVerifiedKey(ctx, password)
	if err != nil {
		s.logger.Warn().Err(err).Str("func", "VaultService.Unlock").Msg("unlock failed")
		return ErrCannotUnlock
	}
	defer crypto.Wipe(key)

	s.LoadPreferences(ctx)

	s.session.SetKey(key)
	s.session.SetLocked(ctx, false)
	return nil
}

func (s *VaultService) deriveVerifiedKey(ctx context.Context, password string) ([]byte, error) {
	saltSetting, err := s.settings.GetSetting(ctx, models.SettingMasterSalt)
	if errors.Is(err, store.ErrSettingNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("read master salt: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(string(saltSetting.Value))
	if err != nil {
		return nil, fmt.Errorf("decode master salt: %w", err)
	}

	verifier, err := s.settings.GetSetting(ctx, models.SettingMasterVerifier)
	if err != nil {
		// without a verifier no password can be checked
		return nil, fmt.Errorf("read master verifier: %w", err)
	}

	key, err := s.keys.DeriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	plain, err := s.cipher.Decrypt(verifier.Value, key)
	if err != nil || !bytes.Equal(plain, verifierPlaintext) {
		crypto.Wipe(key)
		return nil, fmt.Errorf("verify master password: %w", crypto.ErrDecryptionFailed)
	}
	return key, nil
}

// Lock clears the clipboard if it still holds vault data, then locks the
// session and wipes the key.
func (s *VaultService) Lock(ctx context.Context) {
	s.ClearClipboard(ctx)
	s.session.SetLocked(ctx, true)
}

// IsLocked reports whether the session is locked.
func (s *VaultService) IsLocked() bool {
	return s.session.IsLocked()
}
