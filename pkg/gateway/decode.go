package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-aidash/components/dashboard"
)

// decodeRows decodes result records and derives the column list from the
// key order of the first record, which the backend preserves.
func decodeRows(raw []json.RawMessage) ([]dashboard.Row, []string, error) {
	if len(raw) == 0 {
		return []dashboard.Row{}, []string{}, nil
	}
	rows := make([]dashboard.Row, 0, len(raw))
	for i, item := range raw {
		var row dashboard.Row
		if err := json.Unmarshal(item, &row); err != nil {
			return nil, nil, fmt.Errorf("gateway: decode row %d: %w", i, err)
		}
		if row == nil {
			return nil, nil, fmt.Errorf("gateway: row %d is not an object", i)
		}
		rows = append(rows, row)
	}
	columns, err := objectKeys(raw[0])
	if err != nil {
		return nil, nil, err
	}
	return rows, columns, nil
}

// objectKeys lists the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("gateway: read object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("gateway: expected a JSON object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("gateway: read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("gateway: expected an object key")
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("gateway: read value of %q: %w", key, err)
		}
	}
	return keys, nil
}
