package store

import "errors"

// Sentinel errors returned by the storage layer. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrStorage wraps every failure reported by the database driver
	// (begin, commit, query, scan). The driver error is kept in the chain.
	ErrStorage = errors.New("storage error")

	// ErrNoRows is returned by [Storage.FetchOne] when the query produced
	// an empty result set.
	ErrNoRows = errors.New("no rows in result set")

	// ErrSourceNotFound is returned by [Storage.Backup] and [Restore] when
	// the file to copy from does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrSettingNotFound is returned when a settings key has no row.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrClosed is returned by every operation on a closed Storage.
	ErrClosed = errors.New("storage is closed")
)

// Errors produced while assembling SQL statements.
var (
	// ErrBuildingSQLQuery is returned when the query builder rejects its
	// input.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrEmptyPath is returned by [Open] when no database path was given.
	ErrEmptyPath = errors.New("empty database path")
)
