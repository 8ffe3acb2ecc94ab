package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/models"
)

// DefaultAuditLimit is the number of records returned by ListAudit when no
// positive limit is given.
const DefaultAuditLimit = 100

// auditRepository is the SQLite-backed [AuditRepository]. Records are only
// ever inserted.
type auditRepository struct {
	storage *Storage
	logger  *logger.Logger
}

// NewAuditRepository constructs an [AuditRepository] on top of storage.
func NewAuditRepository(storage *Storage, log *logger.Logger) AuditRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &auditRepository{storage: storage, logger: log}
}

// AppendAudit inserts record and returns its id. A zero Timestamp is
// stored as the zero time, so callers are expected to set it.
func (r *auditRepository) AppendAudit(ctx context.Context, record models.AuditRecord) (int64, error) {
	var entryID any
	if record.EntryID != nil {
		entryID = *record.EntryID
	}

	query, args, err := sq.Insert(record.TableName()).
		Columns("action", "timestamp", "entry_id", "details", "signature").
		Values(
			record.Action,
			models.FormatTimestamp(record.Timestamp),
			entryID,
			record.Details,
			record.Signature,
		).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.storage.Execute(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "auditRepository.AppendAudit").
			Str("action", record.Action).
			Msg("failed to append audit record")
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %w", ErrStorage, err)
	}
	return id, nil
}

// ListAudit returns at most limit records, newest first.
func (r *auditRepository) ListAudit(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}

	query, args, err := sq.Select("id", "action", "timestamp", "entry_id", "details", "signature").
		From(models.AuditRecord{}.TableName()).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.storage.FetchAll(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "auditRepository.ListAudit").
			Int("limit", limit).
			Msg("failed to list audit records")
		return nil, err
	}

	records := make([]models.AuditRecord, 0, len(rows))
	for i, row := range rows {
		ts, err := models.ParseTimestamp(row.String("timestamp"))
		if err != nil {
			r.logger.Warn().Err(err).
				Str("func", "auditRepository.ListAudit").
				Int("row", i).
				Msg("unparsable audit timestamp")
		}

		id, _ := row.Int64("id")
		record := models.AuditRecord{
			ID:        id,
			Action:    row.String("action"),
			Timestamp: ts,
			Details:   row.String("details"),
			Signature: row.String("signature"),
		}
		if entryID, ok := row.Int64("entry_id"); ok {
			record.EntryID = &entryID
		}
		records = append(records, record)
	}

	return records, nil
}
