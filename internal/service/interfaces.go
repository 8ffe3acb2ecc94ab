package service

import (
	"context"

	"github.com/MKhiriev/cryptosafe/models"
)

// EntryRepository is the persistence the vault service needs for entries.
type EntryRepository interface {
	Insert(ctx context.Context, key []byte, in models.EntryInput) (int64, error)
	Update(ctx context.Context, key []byte, id int64, upd models.EntryUpdate) error
	Delete(ctx context.Context, id int64) error
	ListSummaries(ctx context.Context) ([]models.EntrySummary, error)
	Get(ctx context.Context, id int64) (models.VaultEntry, error)
	Decrypt(key []byte, entry models.VaultEntry) (models.DecryptedEntry, error)
}

// AuditReader serves the audit viewer.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]models.AuditRecord, error)
}

// KeyDeriver turns a master password into key material.
type KeyDeriver interface {
	DeriveKey(password string, salt []byte) ([]byte, error)
	GenerateSalt(size int) ([]byte, error)
}
