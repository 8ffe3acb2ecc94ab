package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/cryptosafe/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// DBTX is the subset of database/sql handed to [Storage.Cursor] callbacks.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SettingsRepository persists key/value rows of the settings table.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (models.Setting, error)
	PutSetting(ctx context.Context, setting models.Setting) error
	PutSettings(ctx context.Context, settings ...models.Setting) error
	DeleteSetting(ctx context.Context, key string) error
}

// AuditRepository appends to and reads from the audit_log table.
type AuditRepository interface {
	AppendAudit(ctx context.Context, record models.AuditRecord) (int64, error)
	ListAudit(ctx context.Context, limit int) ([]models.AuditRecord, error)
}
