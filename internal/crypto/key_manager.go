// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

const (
	// DefaultSaltSize is the salt length produced by GenerateSalt when no
	// explicit size is requested.
	DefaultSaltSize = 32

	// MinSaltLength is the shortest salt DeriveKey accepts.
	MinSaltLength = 8

	// KeyLength is the length of derived keys (256 bits).
	KeyLength = 32
)

// KDFParams holds the Argon2id tuning parameters.
type KDFParams struct {
	// Time is the number of passes over memory.
	Time uint32

	// MemoryKiB is the memory cost in KiB.
	MemoryKiB uint32

	// Threads is the degree of parallelism.
	Threads uint8
}

// DefaultKDFParams returns the OWASP recommended Argon2id parameters:
// 3 iterations, 64 MiB of memory and 4 threads.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Time:      3,
		MemoryKiB: 64 * 1024,
		Threads:   4,
	}
}

// KeyManager derives session keys from the master password and produces
// salts. Its StoreKey/LoadKey pair is an extension point for secure key
// storage and is intentionally inert.
type KeyManager struct {
	params  KDFParams
	keyFile string
}

// NewKeyManager constructs a KeyManager. Zero fields of params are replaced
// with [DefaultKDFParams] values. keyFile is the location StoreKey prepares;
// it may be empty.
func NewKeyManager(params KDFParams, keyFile string) *KeyManager {
	def := DefaultKDFParams()
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.MemoryKiB == 0 {
		params.MemoryKiB = def.MemoryKiB
	}
	if params.Threads == 0 {
		params.Threads = def.Threads
	}

	return &KeyManager{params: params, keyFile: keyFile}
}

// Params returns the Argon2id parameters in use.
func (m *KeyManager) Params() KDFParams {
	return m.params
}

// DeriveKey derives a [KeyLength]-byte key from password and salt with
// Argon2id. The same inputs always produce the same key. Returns
// [ErrInvalidInput] when password is empty or salt is shorter than
// [MinSaltLength] bytes.
func (m *KeyManager) DeriveKey(password string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}
	if len(salt) < MinSaltLength {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", ErrInvalidInput, MinSaltLength)
	}

	return argon2.IDKey(
		[]byte(password),
		salt,
		m.params.Time,
		m.params.MemoryKiB,
		m.params.Threads,
		KeyLength,
	), nil
}

// GenerateSalt reads size random bytes from the OS CSPRNG. A size of zero or
// less yields [DefaultSaltSize] bytes.
func (m *KeyManager) GenerateSalt(size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSaltSize
	}

	salt := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// StoreKey prepares the key file location by creating its parent directory.
// The key itself is not written anywhere.
func (m *KeyManager) StoreKey(key []byte) error {
	if m.keyFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.keyFile), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	return nil
}

// LoadKey always reports [ErrNoStoredKey].
func (m *KeyManager) LoadKey() ([]byte, error) {
	return nil, ErrNoStoredKey
}
