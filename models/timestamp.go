package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for every persisted timestamp.
// The fixed width keeps lexical and chronological order identical, which
// ORDER BY on the TEXT columns relies on.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in UTC using [TimestampLayout].
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a value previously produced by [FormatTimestamp].
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
