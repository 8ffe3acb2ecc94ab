package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/cryptosafe/internal/clipboard"
)

// TickResult reports what a [VaultService.Tick] did.
type TickResult struct {
	ClipboardCleared bool
	Locked           bool
}

// CopyPassword puts the password of entry id on the clipboard and starts
// the clipboard timer with the configured timeout.
func (s *VaultService) CopyPassword(ctx context.Context, id int64) error {
	entry, err := s.RevealEntry(ctx, id)
	if err != nil {
		return err
	}

	if err = s.clipboard.WriteAll(entry.Password); err != nil {
		s.logger.Err(err).
			Str("func", "VaultService.CopyPassword").
			Int64("entry_id", id).
			Msg("failed to write clipboard")
		return fmt.Errorf("copy password: %w", err)
	}

	s.session.SetClipboardContent(ctx, entry.Password, s.Preferences().ClipboardDuration())
	return nil
}

// ClearClipboard takes back what the vault put on the clipboard. Content
// the user copied since is left alone. Clipboard failures are logged.
func (s *VaultService) ClearClipboard(ctx context.Context) {
	content := s.session.ClipboardContent()
	if content == "" {
		return
	}

	if _, err := clipboard.ClearIfOwned(s.clipboard, content); err != nil {
		s.logger.Warn().Err(err).
			Str("func", "VaultService.ClearClipboard").
			Msg("failed to clear clipboard")
	}
	s.session.SetClipboardContent(ctx, "", 0)
}

// Tick runs the periodic housekeeping: it clears an expired clipboard and
// locks a session that has been idle past the auto-lock period.
func (s *VaultService) Tick(ctx context.Context) TickResult {
	var res TickResult

	if s.session.IsClipboardExpired() {
		s.ClearClipboard(ctx)
		res.ClipboardCleared = true
	}

	if s.session.IsInactivityExpired() {
		s.logger.Info().Str("func", "VaultService.Tick").Msg("locking idle session")
		s.Lock(ctx)
		res.Locked = true
	}

	return res
}

// Touch records user activity, postponing auto-lock.
func (s *VaultService) Touch() {
	s.session.TouchActivity()
}
