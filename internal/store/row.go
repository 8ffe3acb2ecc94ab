package store

import (
	"context"
	"fmt"
)

// Row is one result row keyed by column name. SQLite hands back TEXT as
// string or []byte depending on the declared column type, so values should
// be read through the typed accessors.
type Row map[string]any

// String returns column as a string. Missing and NULL columns read as "".
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns column as an integer and whether it held one.
func (r Row) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bytes returns column as a byte slice. Missing and NULL columns read as an
// empty slice.
func (r Row) Bytes(column string) []byte {
	switch v := r[column].(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return []byte{}
	}
}

// Bool interprets an INTEGER column as a flag.
func (r Row) Bool(column string) bool {
	n, ok := r.Int64(column)
	return ok && n != 0
}

func queryRows(ctx context.Context, tx DBTX, query string, args ...any) ([]Row, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrStorage, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: read columns: %w", ErrStorage, err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", ErrStorage, err)
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %w", ErrStorage, err)
	}

	return result, nil
}
