package vault

import "errors"

// Sentinel errors returned by [Repository]. Callers should use [errors.Is]
// to match against these values.
var (
	// ErrValidation is returned when an entry violates a field rule, most
	// commonly an empty title after trimming.
	ErrValidation = errors.New("entry validation failed")

	// ErrNotFound is returned when the requested entry id does not exist.
	ErrNotFound = errors.New("entry not found")

	// ErrEncryption is returned when the cipher fails to seal a secret
	// field. The cipher error is kept in the chain.
	ErrEncryption = errors.New("failed to encrypt entry field")

	// ErrDecryption is returned when a stored secret field cannot be
	// opened with the given key.
	ErrDecryption = errors.New("failed to decrypt entry field")
)
