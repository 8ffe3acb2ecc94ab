// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Field length limits applied to vault entries before they are persisted.
// Longer values are truncated, not rejected.
const (
	MaxTitleLength    = 500
	MaxUsernameLength = 500
	MaxURLLength      = 2000
	MaxNotesLength    = 10000
	MaxTagsLength     = 1000
)

// VaultEntry is a single credential row as stored in the vault_entries table.
// Secret fields are kept only in their ciphered form.
type VaultEntry struct {
	// ID is assigned by storage on insert and never changes afterwards.
	ID int64 `json:"id"`

	// Title is the required, trimmed display name of the credential.
	Title string `json:"title" validate:"required,max=500"`

	// Username is the optional login name.
	Username string `json:"username" validate:"max=500"`

	// EncryptedPassword is the ciphertext of the password. It is never empty,
	// even when the plaintext password is.
	EncryptedPassword []byte `json:"-" validate:"required"`

	// URL is the optional address the credential belongs to.
	URL string `json:"url" validate:"max=2000"`

	// EncryptedNotes is the ciphertext of the notes, or an empty slice when
	// the entry has no notes.
	EncryptedNotes []byte `json:"-"`

	// Tags is a free-form tag string.
	Tags string `json:"tags" validate:"max=1000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table associated with
// the VaultEntry model.
func (e VaultEntry) TableName() string {
	return "vault_entries"
}

// EntrySummary holds the non-secret columns of a vault entry. It is what
// list views get to see.
type EntrySummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	URL       string    `json:"url"`
	Tags      string    `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryInput carries the plaintext fields of a new vault entry.
type EntryInput struct {
	Title    string
	Username string
	Password string
	URL      string
	Notes    string
	Tags     string
}

// EntryUpdate describes a partial update of a vault entry. A nil field keeps
// the stored value.
type EntryUpdate struct {
	Title    *string
	Username *string
	Password *string
	URL      *string
	Notes    *string
	Tags     *string
}

// IsEmpty reports whether the update does not touch any field.
func (u EntryUpdate) IsEmpty() bool {
	return u.Title == nil && u.Username == nil && u.Password == nil &&
		u.URL == nil && u.Notes == nil && u.Tags == nil
}

// DecryptedEntry is a vault entry with its secret fields in plaintext.
// It must only live in memory while the session is unlocked.
type DecryptedEntry struct {
	EntrySummary
	Password string `json:"-"`
	Notes    string `json:"-"`
}
