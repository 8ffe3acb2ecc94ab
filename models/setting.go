package models

// Well-known setting keys.
const (
	SettingMasterSalt       = "master_salt"
	SettingMasterVerifier   = "master_verifier"
	SettingClipboardTimeout = "app_clipboard_timeout"
	SettingAutoLockMinutes  = "app_auto_lock_minutes"
)

// Setting is a key/value row of the settings table. There is at most one
// row per key.
type Setting struct {
	Key       string
	Value     []byte
	Encrypted bool
}
