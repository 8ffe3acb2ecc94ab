package models

import "time"

// MaxAuditDetailsLength bounds the free-text details of an audit record.
const MaxAuditDetailsLength = 2000

// AuditRecord is an append-only line of the audit_log table.
type AuditRecord struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`

	// EntryID references the vault entry the event is about, if any.
	EntryID *int64 `json:"entry_id,omitempty"`

	Details string `json:"details"`

	// Signature is reserved for integrity stamping and is currently empty.
	Signature string `json:"signature"`
}

// TableName returns the name of the database table associated with
// the AuditRecord model.
func (a AuditRecord) TableName() string {
	return "audit_log"
}
