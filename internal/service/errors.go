package service

import "errors"

// Sentinel errors returned by [VaultService]. Callers should use [errors.Is]
// to match against these values.
var (
	// ErrCannotUnlock is the single error reported for every unlock
	// failure. It deliberately does not say whether the salt was missing,
	// malformed or the password wrong.
	ErrCannotUnlock = errors.New("cannot unlock vault")

	// ErrLocked is returned by operations that need the vault key while
	// the session is locked.
	ErrLocked = errors.New("vault is locked")

	// ErrAlreadyInitialized is returned by Setup on a vault that already
	// has a master password.
	ErrAlreadyInitialized = errors.New("vault is already initialized")

	// ErrNotInitialized is the logged cause when Unlock runs on a vault
	// that was never set up. Callers see only ErrCannotUnlock.
	ErrNotInitialized = errors.New("vault is not initialized")

	// ErrWeakMasterPassword is returned by Setup when the master password
	// is shorter than 12 characters or has no digit.
	ErrWeakMasterPassword = errors.New("master password must be at least 12 characters long and contain a digit")

	// ErrInvalidPreferences is returned when a preference is out of range.
	ErrInvalidPreferences = errors.New("invalid preferences")
)
