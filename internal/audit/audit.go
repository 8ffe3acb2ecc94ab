// Package audit records every canonical vault event in the append-only
// audit_log table.
package audit

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/MKhiriev/cryptosafe/internal/events"
	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/models"
)

// DefaultRecentLimit is the size of the audit viewer page.
const DefaultRecentLimit = 100

// Log writes audit records in response to bus events and serves the most
// recent ones back.
type Log struct {
	repo   store.AuditRepository
	now    func() time.Time
	logger *logger.Logger
}

// Option customises a Log.
type Option func(*Log)

// WithClock replaces the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// RegisterHandlers subscribes one handler per canonical event on bus. Each
// handler appends a record through repo. A failed write is logged and never
// reaches the publisher, so auditing can not break a vault operation.
func RegisterHandlers(bus *events.Bus, repo store.AuditRepository, log *logger.Logger, opts ...Option) *Log {
	if log == nil {
		log = logger.Nop()
	}
	l := &Log{repo: repo, now: time.Now, logger: log}
	for _, opt := range opts {
		opt(l)
	}

	for _, event := range events.All() {
		bus.Subscribe(event, l.handle)
	}
	return l
}

// Recent returns up to limit records, newest first. A non-positive limit
// means [DefaultRecentLimit].
func (l *Log) Recent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	records, err := l.repo.ListAudit(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	return records, nil
}

func (l *Log) handle(ctx context.Context, event string, payload events.Payload) error {
	record := models.AuditRecord{
		Action:    event,
		Timestamp: l.now().UTC(),
		EntryID:   entryID(payload),
		Details:   details(payload),
	}

	if _, err := l.repo.AppendAudit(ctx, record); err != nil {
		l.logger.Warn().Err(err).
			Str("func", "audit.Log.handle").
			Str("event", event).
			Msg("failed to write audit record")
	}
	return nil
}

// entryID extracts an integer entry_id from payload. Whole floats, as
// decoded from JSON, are accepted. Anything else, including a missing key
// or a value outside the int64 range, yields nil.
func entryID(payload events.Payload) *int64 {
	var id int64
	switch v := payload[events.KeyEntryID].(type) {
	case int64:
		id = v
	case int:
		id = int64(v)
	case int32:
		id = int64(v)
	case int16:
		id = int64(v)
	case int8:
		id = int64(v)
	case uint32:
		id = int64(v)
	case uint16:
		id = int64(v)
	case uint8:
		id = int64(v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil
		}
		id = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return nil
		}
		id = int64(v)
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return nil
		}
		id = int64(v)
	case float32:
		f := float64(v)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil
		}
		id = int64(f)
	default:
		return nil
	}
	return &id
}

func details(payload events.Payload) string {
	v, ok := payload[events.KeyDetails]
	if !ok || v == nil {
		return ""
	}

	s := fmt.Sprint(v)
	if utf8.RuneCountInString(s) > models.MaxAuditDetailsLength {
		s = string([]rune(s)[:models.MaxAuditDetailsLength])
	}
	return s
}
