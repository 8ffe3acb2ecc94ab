// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package vault stores credentials in the vault_entries table. Passwords
// and notes are sealed with a [crypto.Cipher] before they reach storage;
// plaintext secrets never leave this package except through
// [Repository.Decrypt].
package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/models"
)

const entriesTable = "vault_entries"

var summaryColumns = []string{"id", "title", "username", "url", "tags", "created_at", "updated_at"}

var entryColumns = []string{
	"id", "title", "username", "encrypted_password", "url", "notes", "tags", "created_at", "updated_at",
}

// Repository performs CRUD over encrypted vault entries. It never publishes
// events; that is left to the caller once an operation has succeeded.
type Repository struct {
	storage  *store.Storage
	cipher   crypto.Cipher
	validate *validator.Validate
	now      func() time.Time
	logger   *logger.Logger
}

// Option customises a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository constructs a Repository over storage using cipher for the
// secret fields.
func NewRepository(storage *store.Storage, cipher crypto.Cipher, log *logger.Logger, opts ...Option) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	r := &Repository{
		storage:  storage,
		cipher:   cipher,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert normalises, encrypts and stores a new entry and returns its id.
// Both timestamps are set to the same instant.
func (r *Repository) Insert(ctx context.Context, key []byte, in models.EntryInput) (int64, error) {
	in = normalizeInput(in)
	if in.Title == "" {
		return 0, fmt.Errorf("%w: title is required", ErrValidation)
	}

	encPassword, err := r.seal(in.Password, key)
	if err != nil {
		return 0, err
	}
	encNotes, err := r.sealNotes(in.Notes, key)
	if err != nil {
		return 0, err
	}

	now := r.timestamp()
	entry := models.VaultEntry{
		Title:             in.Title,
		Username:          in.Username,
		EncryptedPassword: encPassword,
		URL:               in.URL,
		EncryptedNotes:    encNotes,
		Tags:              in.Tags,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err = validateEntry(r.validate, entry); err != nil {
		return 0, err
	}

	query, args, err := sq.Insert(entriesTable).
		Columns("title", "username", "encrypted_password", "url", "notes", "tags", "created_at", "updated_at").
		Values(
			entry.Title,
			entry.Username,
			entry.EncryptedPassword,
			entry.URL,
			entry.EncryptedNotes,
			entry.Tags,
			models.FormatTimestamp(entry.CreatedAt),
			models.FormatTimestamp(entry.UpdatedAt),
		).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	result, err := r.storage.Execute(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "vault.Repository.Insert").
			Msg("failed to insert vault entry")
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %w", store.ErrStorage, err)
	}

	r.logger.Debug().Str("func", "vault.Repository.Insert").Int64("entry_id", id).Msg("vault entry inserted")
	return id, nil
}

// Update applies upd to entry id. Nil fields keep their stored values;
// provided fields follow the insert rules. updated_at always moves forward,
// even when the clock has not.
func (r *Repository) Update(ctx context.Context, key []byte, id int64, upd models.EntryUpdate) error {
	upd = normalizeUpdate(upd)
	if upd.Title != nil && *upd.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}

	set := map[string]any{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.URL != nil {
		set["url"] = *upd.URL
	}
	if upd.Tags != nil {
		set["tags"] = *upd.Tags
	}
	if upd.Password != nil {
		enc, err := r.seal(*upd.Password, key)
		if err != nil {
			return err
		}
		set["encrypted_password"] = enc
	}
	if upd.Notes != nil {
		enc, err := r.sealNotes(*upd.Notes, key)
		if err != nil {
			return err
		}
		set["notes"] = enc
	}

	selectQuery, selectArgs, err := sq.Select("updated_at").
		From(entriesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	err = r.storage.Cursor(ctx, func(ctx context.Context, tx store.DBTX) error {
		var stored string
		if err := tx.QueryRowContext(ctx, selectQuery, selectArgs...).Scan(&stored); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: id %d", ErrNotFound, id)
			}
			return fmt.Errorf("%w: read entry: %w", store.ErrStorage, err)
		}

		prev, err := models.ParseTimestamp(stored)
		if err != nil {
			return fmt.Errorf("%w: %w", store.ErrStorage, err)
		}
		set["updated_at"] = models.FormatTimestamp(r.advance(prev))

		query, args, err := sq.Update(entriesTable).
			SetMap(set).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: update entry: %w", store.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Err(err).
				Str("func", "vault.Repository.Update").
				Int64("entry_id", id).
				Msg("failed to update vault entry")
		}
		return err
	}

	return nil
}

// Delete removes entry id. Deleting a missing id is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete(entriesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	if _, err = r.storage.Execute(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "vault.Repository.Delete").
			Int64("entry_id", id).
			Msg("failed to delete vault entry")
		return err
	}
	return nil
}

// ListSummaries returns the non-secret columns of every entry, most
// recently updated first.
func (r *Repository) ListSummaries(ctx context.Context) ([]models.EntrySummary, error) {
	query, args, err := sq.Select(summaryColumns...).
		From(entriesTable).
		OrderBy("updated_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	rows, err := r.storage.FetchAll(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "vault.Repository.ListSummaries").
			Msg("failed to list vault entries")
		return nil, err
	}

	summaries := make([]models.EntrySummary, 0, len(rows))
	for _, row := range rows {
		summary, err := summaryFromRow(row)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Get returns the stored (still encrypted) entry id.
func (r *Repository) Get(ctx context.Context, id int64) (models.VaultEntry, error) {
	query, args, err := sq.Select(entryColumns...).
		From(entriesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.VaultEntry{}, fmt.Errorf("%w: %w", store.ErrBuildingSQLQuery, err)
	}

	row, err := r.storage.FetchOne(ctx, query, args...)
	if errors.Is(err, store.ErrNoRows) {
		return models.VaultEntry{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		r.logger.Err(err).
			Str("func", "vault.Repository.Get").
			Int64("entry_id", id).
			Msg("failed to read vault entry")
		return models.VaultEntry{}, err
	}

	summary, err := summaryFromRow(row)
	if err != nil {
		return models.VaultEntry{}, err
	}
	return models.VaultEntry{
		ID:                summary.ID,
		Title:             summary.Title,
		Username:          summary.Username,
		EncryptedPassword: row.Bytes("encrypted_password"),
		URL:               summary.URL,
		EncryptedNotes:    row.Bytes("notes"),
		Tags:              summary.Tags,
		CreatedAt:         summary.CreatedAt,
		UpdatedAt:         summary.UpdatedAt,
	}, nil
}

// Decrypt opens the secret fields of entry with key.
func (r *Repository) Decrypt(key []byte, entry models.VaultEntry) (models.DecryptedEntry, error) {
	password, err := r.cipher.Decrypt(entry.EncryptedPassword, key)
	if err != nil {
		return models.DecryptedEntry{}, fmt.Errorf("%w: password: %w", ErrDecryption, err)
	}

	var notes []byte
	if len(entry.EncryptedNotes) > 0 {
		notes, err = r.cipher.Decrypt(entry.EncryptedNotes, key)
		if err != nil {
			crypto.Wipe(password)
			return models.DecryptedEntry{}, fmt.Errorf("%w: notes: %w", ErrDecryption, err)
		}
	}

	decrypted := models.DecryptedEntry{
		EntrySummary: models.EntrySummary{
			ID:        entry.ID,
			Title:     entry.Title,
			Username:  entry.Username,
			URL:       entry.URL,
			Tags:      entry.Tags,
			CreatedAt: entry.CreatedAt,
			UpdatedAt: entry.UpdatedAt,
		},
		Password: string(password),
		Notes:    string(notes),
	}
	crypto.Wipe(password)
	crypto.Wipe(notes)
	return decrypted, nil
}

func (r *Repository) seal(plaintext string, key []byte) ([]byte, error) {
	enc, err := r.cipher.Encrypt([]byte(plaintext), key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryption, err)
	}
	return enc, nil
}

// sealNotes stores empty notes as an empty blob instead of a ciphertext.
func (r *Repository) sealNotes(notes string, key []byte) ([]byte, error) {
	if notes == "" {
		return []byte{}, nil
	}
	return r.seal(notes, key)
}

// timestamp returns the clock reading at storage precision.
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *Repository) advance(prev time.Time) time.Time {
	now := r.timestamp()
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

func summaryFromRow(row store.Row) (models.EntrySummary, error) {
	id, _ := row.Int64("id")

	createdAt, err := models.ParseTimestamp(row.String("created_at"))
	if err != nil {
		return models.EntrySummary{}, fmt.Errorf("%w: entry %d: %w", store.ErrStorage, id, err)
	}
	updatedAt, err := models.ParseTimestamp(row.String("updated_at"))
	if err != nil {
		return models.EntrySummary{}, fmt.Errorf("%w: entry %d: %w", store.ErrStorage, id, err)
	}

	return models.EntrySummary{
		ID:        id,
		Title:     row.String("title"),
		Username:  row.String("username"),
		URL:       row.String("url"),
		Tags:      row.String("tags"),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
