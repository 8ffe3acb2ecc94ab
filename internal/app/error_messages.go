// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used by the
// cryptosafe command-line interface.
//
// All Msg* constants are human-readable message strings that are printed to
// the user or written into log entries to describe the outcome of an
// operation. Keeping them in one place ensures consistent wording across
// commands.
package app

const (
	// MsgNotInitialized is returned when a command needs the vault but no
	// master password has been set yet.
	MsgNotInitialized = "vault is not initialized, run `cryptosafe init` first"

	// MsgCannotUnlock is returned for every unlock failure. It does not say
	// whether the password or the stored key material was at fault.
	MsgCannotUnlock = "cannot unlock vault: wrong master password or damaged vault"

	// MsgPasswordsDoNotMatch is returned when the master password and its
	// confirmation differ during init.
	MsgPasswordsDoNotMatch = "passwords do not match"

	// MsgNothingToChange is returned when edit is called without any field
	// flag.
	MsgNothingToChange = "nothing to change, pass at least one field flag"

	// MsgEntryNotFound is the format for a missing entry id.
	MsgEntryNotFound = "entry %d not found"

	// MsgInvalidEntryID is the format for an id argument that is not a
	// positive integer.
	MsgInvalidEntryID = "invalid entry id %q"

	// MsgUnknownSetting is the format for an unsupported settings key.
	MsgUnknownSetting = "unknown setting %q"

	// MsgVaultExists is the format used when restore would overwrite an
	// existing vault without --force.
	MsgVaultExists = "vault %s already exists, use --force to replace it"

	// MsgClipboardCleared is printed once a copied password has been
	// removed from the clipboard.
	MsgClipboardCleared = "Clipboard cleared"

	// MsgCommandFailed is logged when a command returns an error.
	MsgCommandFailed = "command failed"
)
