package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Backup copies the database file to dst while holding the storage lock,
// so no transaction can be in flight during the copy. The destination
// directory is created when missing and an existing file is replaced.
func (s *Storage) Backup(ctx context.Context, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.path == "" || s.path == memoryPath {
		return fmt.Errorf("%w: %q has no backing file", ErrSourceNotFound, s.path)
	}

	if err := copyFile(s.path, dst); err != nil {
		s.logger.Err(err).
			Str("func", "Storage.Backup").
			Str("src", s.path).
			Str("dst", dst).
			Msg("backup failed")
		return err
	}

	s.logger.Info().Str("func", "Storage.Backup").Str("dst", dst).Msg("database backed up")
	return nil
}

// Restore copies backupPath over dbPath. The store at dbPath must be
// closed; reopen it afterwards.
func Restore(backupPath, dbPath string) error {
	return copyFile(backupPath, dbPath)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, src)
		}
		return fmt.Errorf("%w: open %s: %w", ErrStorage, src, err)
	}
	defer in.Close()

	if err = os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrStorage, filepath.Dir(dst), err)
	}

	// write to a sibling temp file and rename, so a failed copy never
	// leaves a truncated database behind
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: copy %s: %w", ErrStorage, src, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", ErrStorage, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrStorage, tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrStorage, tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", ErrStorage, dst, err)
	}

	return nil
}
