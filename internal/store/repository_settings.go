package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/models"
)

const settingsTable = "settings"

// settingsRepository is the SQLite-backed [SettingsRepository].
type settingsRepository struct {
	storage *Storage
	logger  *logger.Logger
}

// NewSettingsRepository constructs a [SettingsRepository] on top of storage.
func NewSettingsRepository(storage *Storage, log *logger.Logger) SettingsRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &settingsRepository{storage: storage, logger: log}
}

// GetSetting returns the row stored under key or [ErrSettingNotFound].
func (r *settingsRepository) GetSetting(ctx context.Context, key string) (models.Setting, error) {
	query, args, err := sq.Select("setting_key", "setting_value", "encrypted").
		From(settingsTable).
		Where(sq.Eq{"setting_key": key}).
		ToSql()
	if err != nil {
		return models.Setting{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row, err := r.storage.FetchOne(ctx, query, args...)
	if errors.Is(err, ErrNoRows) {
		return models.Setting{}, fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	if err != nil {
		r.logger.Err(err).
			Str("func", "settingsRepository.GetSetting").
			Str("key", key).
			Msg("failed to read setting")
		return models.Setting{}, err
	}

	return models.Setting{
		Key:       row.String("setting_key"),
		Value:     row.Bytes("setting_value"),
		Encrypted: row.Bool("encrypted"),
	}, nil
}

// PutSetting replaces the row stored under setting.Key. The delete and the
// insert share one transaction, so the table never holds two rows for the
// same key.
func (r *settingsRepository) PutSetting(ctx context.Context, setting models.Setting) error {
	return r.PutSettings(ctx, setting)
}

// PutSettings replaces every given row in a single transaction: either all
// of them are written or none is.
func (r *settingsRepository) PutSettings(ctx context.Context, settings ...models.Setting) error {
	type statement struct {
		query string
		args  []any
	}
	statements := make([]statement, 0, 2*len(settings))

	for _, setting := range settings {
		if setting.Key == "" {
			return fmt.Errorf("%w: empty setting key", ErrBuildingSQLQuery)
		}

		deleteQuery, deleteArgs, err := sq.Delete(settingsTable).
			Where(sq.Eq{"setting_key": setting.Key}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		value := setting.Value
		if value == nil {
			value = []byte{}
		}
		insertQuery, insertArgs, err := sq.Insert(settingsTable).
			Columns("setting_key", "setting_value", "encrypted").
			Values(setting.Key, value, setting.Encrypted).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		statements = append(statements,
			statement{query: deleteQuery, args: deleteArgs},
			statement{query: insertQuery, args: insertArgs},
		)
	}
	if len(statements) == 0 {
		return nil
	}

	err := r.storage.Cursor(ctx, func(ctx context.Context, tx DBTX) error {
		for i, st := range statements {
			if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
				op := "delete"
				if i%2 == 1 {
					op = "insert"
				}
				return fmt.Errorf("%w: %s setting: %w", ErrStorage, op, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Err(err).
			Str("func", "settingsRepository.PutSettings").
			Int("count", len(settings)).
			Msg("failed to write settings")
		return err
	}

	return nil
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func (r *settingsRepository) DeleteSetting(ctx context.Context, key string) error {
	query, args, err := sq.Delete(settingsTable).
		Where(sq.Eq{"setting_key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.storage.Execute(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "settingsRepository.DeleteSetting").
			Str("key", key).
			Msg("failed to delete setting")
		return err
	}

	return nil
}
