package querybackend

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Record is one result row that keeps its column order when encoded.
type Record struct {
	Columns []string
	Values  []any
}

// Get returns the value stored under column.
func (r Record) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Set appends column or replaces its value.
func (r *Record) Set(column string, value any) {
	for i, c := range r.Columns {
		if c == column {
			r.Values[i] = value
			return
		}
	}
	r.Columns = append(r.Columns, column)
	r.Values = append(r.Values, value)
}

// Len reports the number of columns.
func (r Record) Len() int { return len(r.Columns) }

// MarshalJSON encodes the record as an object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, fmt.Errorf("querybackend: encode %q: %w", col, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// query runs stmt and collects every row.
func query(ctx context.Context, db *sql.DB, stmt string) ([]Record, []string, error) {
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	records := []Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		records = append(records, Record{Columns: columns, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return records, columns, nil
}
