package crypto

import "errors"

// Sentinel errors returned by the crypto package. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrInvalidKey is returned by a [Cipher] when the key is empty.
	ErrInvalidKey = errors.New("crypto: invalid key")

	// ErrInvalidInput is returned by [KeyManager.DeriveKey] when the password
	// is empty or the salt is shorter than [MinSaltLength] bytes.
	ErrInvalidInput = errors.New("crypto: invalid input")

	// ErrDecryptionFailed is returned when the ciphertext is malformed, was
	// produced under a different key, or has been tampered with.
	ErrDecryptionFailed = errors.New("crypto: decryption failed")

	// ErrNoStoredKey is returned by [KeyManager.LoadKey]; persistent key
	// storage is not implemented.
	ErrNoStoredKey = errors.New("crypto: no stored key")
)
