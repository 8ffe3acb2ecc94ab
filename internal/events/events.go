// Package events implements the in-process, synchronous publish/subscribe
// bus that decouples vault mutations from audit logging and UI
// notifications.
package events

// Canonical event names.
const (
	EntryAdded       = "entry_added"
	EntryUpdated     = "entry_updated"
	EntryDeleted     = "entry_deleted"
	UserLoggedIn     = "user_logged_in"
	UserLoggedOut    = "user_logged_out"
	ClipboardCopied  = "clipboard_copied"
	ClipboardCleared = "clipboard_cleared"
)

// Conventional payload keys. Publishers and subscribers agree on them out
// of band; the bus does not interpret payloads.
const (
	KeyEntryID        = "entry_id"
	KeyDetails        = "details"
	KeyTimeoutSeconds = "timeout_seconds"
	KeySessionID      = "session_id"
)

// All lists every canonical event name in a stable order.
func All() []string {
	return []string{
		EntryAdded,
		EntryUpdated,
		EntryDeleted,
		UserLoggedIn,
		UserLoggedOut,
		ClipboardCopied,
		ClipboardCleared,
	}
}

// Payload is the open key/value map carried by an event.
type Payload map[string]any
