// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/migrations"
)

const memoryPath = ":memory:"

// Storage owns the single SQLite connection of the vault.
//
// Every operation acquires one mutex for its whole duration, so at most one
// transaction is in flight at a time. The mutex is not re-entrant: code
// running inside a [Storage.Cursor] callback must use the handed DBTX and
// never call back into Storage. Concurrent access from other processes is
// not coordinated.
type Storage struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
	logger *logger.Logger
}

// Open opens (creating if needed) the SQLite database at path. The parent
// directory is created when missing. The pool is limited to one connection.
// The schema is not touched; call [Storage.InitSchema] for that.
func Open(ctx context.Context, path string, log *logger.Logger) (*Storage, error) {
	if log == nil {
		log = logger.Nop()
	}
	if path == "" {
		return nil, ErrEmptyPath
	}

	dsn := path
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			log.Err(err).Str("func", "store.Open").Str("path", path).Msg("error creating database directory")
			return nil, fmt.Errorf("%w: create database directory: %w", ErrStorage, err)
		}
		dsn = path + "?_busy_timeout=5000"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Err(err).Str("func", "store.Open").Msg("error opening database")
		return nil, fmt.Errorf("%w: open database: %w", ErrStorage, err)
	}
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		log.Err(err).Str("func", "store.Open").Msg("error connecting database (ping)")
		return nil, fmt.Errorf("%w: ping database: %w", ErrStorage, err)
	}
	log.Debug().Str("func", "store.Open").Str("path", path).Msg("connected to database successfully")

	return newStorage(conn, path, log), nil
}

func newStorage(db *sql.DB, path string, log *logger.Logger) *Storage {
	if log == nil {
		log = logger.Nop()
	}
	return &Storage{db: db, path: path, logger: log}
}

// Path returns the database file path the storage was opened with.
func (s *Storage) Path() string {
	return s.path
}

// Cursor runs fn inside a transaction while holding the storage lock.
//
// The transaction is committed when fn returns nil and rolled back when fn
// returns an error, which is then returned unchanged. If fn panics the
// transaction is rolled back and the panic continues. The lock is released
// on every path.
func (s *Storage) Cursor(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Err(err).Str("func", "Storage.Cursor").Msg("failed to begin transaction")
		return fmt.Errorf("%w: begin transaction: %w", ErrStorage, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn().Err(rbErr).Str("func", "Storage.Cursor").Msg("rollback failed")
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			s.logger.Err(commitErr).Str("func", "Storage.Cursor").Msg("failed to commit transaction")
			err = fmt.Errorf("%w: commit transaction: %w", ErrStorage, commitErr)
		}
	}()

	err = fn(ctx, tx)
	return err
}

// InitSchema applies the embedded migrations and stamps the schema
// version. Running it on an initialised database changes nothing.
func (s *Storage) InitSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if err := migrations.Migrate(s.db, s.logger); err != nil {
		s.logger.Err(err).Str("func", "Storage.InitSchema").Msg("failed to apply migrations")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	pragma := fmt.Sprintf("PRAGMA user_version = %d", migrations.SchemaVersion)
	if _, err := s.db.ExecContext(ctx, pragma); err != nil {
		s.logger.Err(err).Str("func", "Storage.InitSchema").Msg("failed to set schema version")
		return fmt.Errorf("%w: set schema version: %w", ErrStorage, err)
	}

	return nil
}

// SchemaVersion reports PRAGMA user_version. A fresh database reports 0.
func (s *Storage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.Cursor(ctx, func(ctx context.Context, tx DBTX) error {
		if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
			return fmt.Errorf("%w: read schema version: %w", ErrStorage, err)
		}
		return nil
	})
	return version, err
}

// Execute runs a single statement in its own transaction.
func (s *Storage) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := s.Cursor(ctx, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			s.logger.Err(err).Str("func", "Storage.Execute").Msg("failed to execute statement")
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchAll runs query and returns every row keyed by column name. An empty
// result is an empty slice, not an error.
func (s *Storage) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	var result []Row
	err := s.Cursor(ctx, func(ctx context.Context, tx DBTX) error {
		rows, err := queryRows(ctx, tx, query, args...)
		if err != nil {
			s.logger.Err(err).Str("func", "Storage.FetchAll").Msg("failed to fetch rows")
			return err
		}
		result = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchOne returns the first row produced by query, or [ErrNoRows].
func (s *Storage) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := s.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// Close releases the connection. Further calls fail with [ErrClosed].
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close database: %w", ErrStorage, err)
	}
	return nil
}
