package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/internal/events"
	"github.com/MKhiriev/cryptosafe/models"
)

// AddEntry stores a new entry and publishes entry_added.
func (s *VaultService) AddEntry(ctx context.Context, in models.EntryInput) (int64, error) {
	key, err := s.unlockedKey()
	if err != nil {
		return 0, err
	}
	defer crypto.Wipe(key)

	id, err := s.entries.Insert(ctx, key, in)
	if err != nil {
		return 0, fmt.Errorf("add entry: %w", err)
	}

	s.bus.Publish(ctx, events.EntryAdded, events.Payload{
		events.KeyEntryID: id,
		events.KeyDetails: "title=" + strings.TrimSpace(in.Title),
	})
	return id, nil
}

// UpdateEntry applies a partial update and publishes entry_updated.
func (s *VaultService) UpdateEntry(ctx context.Context, id int64, upd models.EntryUpdate) error {
	key, err := s.unlockedKey()
	if err != nil {
		return err
	}
	defer crypto.Wipe(key)

	if err = s.entries.Update(ctx, key, id, upd); err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}

	s.bus.Publish(ctx, events.EntryUpdated, events.Payload{events.KeyEntryID: id})
	return nil
}

// DeleteEntry removes an entry and publishes entry_deleted.
func (s *VaultService) DeleteEntry(ctx context.Context, id int64) error {
	key, err := s.unlockedKey()
	if err != nil {
		return err
	}
	crypto.Wipe(key)

	if err = s.entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}

	s.bus.Publish(ctx, events.EntryDeleted, events.Payload{events.KeyEntryID: id})
	return nil
}

// ListEntries returns the entry summaries, most recently updated first.
func (s *VaultService) ListEntries(ctx context.Context) ([]models.EntrySummary, error) {
	key, err := s.unlockedKey()
	if err != nil {
		return nil, err
	}
	crypto.Wipe(key)

	summaries, err := s.entries.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return summaries, nil
}

// RevealEntry returns entry id with its secrets decrypted.
func (s *VaultService) RevealEntry(ctx context.Context, id int64) (models.DecryptedEntry, error) {
	key, err := s.unlockedKey()
	if err != nil {
		return models.DecryptedEntry{}, err
	}
	defer crypto.Wipe(key)

	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return models.DecryptedEntry{}, fmt.Errorf("get entry %d: %w", id, err)
	}
	decrypted, err := s.entries.Decrypt(key, entry)
	if err != nil {
		return models.DecryptedEntry{}, fmt.Errorf("decrypt entry %d: %w", id, err)
	}
	return decrypted, nil
}

// AuditTrail returns up to limit audit records, newest first.
func (s *VaultService) AuditTrail(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	return s.audit.Recent(ctx, limit)
}
