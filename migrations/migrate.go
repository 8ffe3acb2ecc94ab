// Package migrations embeds the SQLite schema of the vault and applies it
// with goose.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

// SchemaVersion is the version recorded in PRAGMA user_version once all
// embedded migrations are applied.
const SchemaVersion = 1

//go:embed *.sql
var embedMigrations embed.FS

// Migrate applies every pending migration to db. It is safe to call on an
// already migrated database. logger may be nil, in which case goose output
// is discarded.
func Migrate(db *sql.DB, logger goose.Logger) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	goose.SetBaseFS(embedMigrations)
	if logger == nil {
		logger = nopLogger{}
	}
	goose.SetLogger(logger)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

type nopLogger struct{}

func (nopLogger) Fatalf(string, ...interface{}) {}
func (nopLogger) Printf(string, ...interface{}) {}
