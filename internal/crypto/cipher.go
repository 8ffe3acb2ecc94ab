// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// aesKeyLength is the AES-256 key size in bytes.
const aesKeyLength = 32

// hkdfInfo domain-separates the entry encryption key from any other key
// derived from the same session key.
var hkdfInfo = []byte("cryptosafe/entry-cipher/v1")

// aesGCMCipher is the private implementation of [Cipher]. It normalises the
// caller's key to 256 bits with HKDF-SHA256 and seals data with AES-256-GCM.
// The output blob is nonce (12 bytes) ‖ ciphertext ‖ tag, so even an empty
// plaintext yields a non-empty ciphertext.
type aesGCMCipher struct{}

// NewAESGCMCipher constructs the default [Cipher].
func NewAESGCMCipher() Cipher {
	return &aesGCMCipher{}
}

// Encrypt implements [Cipher]. A fresh random nonce is drawn for every call.
func (c *aesGCMCipher) Encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	// Prepend the nonce so Decrypt can split it out.
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt implements [Cipher]. Any authentication failure is reported as
// [ErrDecryptionFailed].
func (c *aesGCMCipher) Decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize+gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}

	aesKey := make([]byte, aesKeyLength)
	defer Wipe(aesKey)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, hkdfInfo), aesKey); err != nil {
		return nil, fmt.Errorf("expand key: %w", err)
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}
