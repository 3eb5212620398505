package gateway

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-aidash/components/dashboard"
)

// GenericColumns are the columns of the placeholder returned for unknown queries.
var GenericColumns = []string{"Category", "Value"}

var genericCategories = []string{"A", "B", "C"}

//go:embed data/fallback.yaml
var defaultFallbackYAML []byte

type fallbackDocument struct {
	Datasets []fallbackDataset `yaml:"datasets"`
}

type fallbackDataset struct {
	SQL     string   `yaml:"sql"`
	Columns []string `yaml:"columns"`
	Rows    [][]any  `yaml:"rows"`
}

// Datasets holds substitute query results keyed by exact SQL text. Keys in the
// YAML source are trimmed on load; lookups are not.
type Datasets struct {
	bySQL map[string]dashboard.QueryResult
}

// DefaultDatasets returns the built-in substitute datasets.
func DefaultDatasets() *Datasets {
	ds, err := DecodeDatasets(bytes.NewReader(defaultFallbackYAML))
	if err != nil {
		panic(fmt.Sprintf("gateway: embedded fallback data is invalid: %v", err))
	}
	return ds
}

// DecodeDatasets reads substitute datasets from YAML.
func DecodeDatasets(r io.Reader) (*Datasets, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc fallbackDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("gateway: parse fallback data: %w", err)
	}
	ds := &Datasets{bySQL: make(map[string]dashboard.QueryResult, len(doc.Datasets))}
	for idx, set := range doc.Datasets {
		key := strings.TrimSpace(set.SQL)
		if key == "" {
			return nil, fmt.Errorf("gateway: fallback dataset %d is missing sql", idx)
		}
		if _, dup := ds.bySQL[key]; dup {
			return nil, fmt.Errorf("gateway: fallback dataset %d duplicates sql", idx)
		}
		rows := make([]dashboard.Row, len(set.Rows))
		for i, values := range set.Rows {
			if len(values) != len(set.Columns) {
				return nil, fmt.Errorf("gateway: fallback dataset %d row %d has %d values for %d columns",
					idx, i, len(values), len(set.Columns))
			}
			row := make(dashboard.Row, len(values))
			for j, col := range set.Columns {
				row[col] = values[j]
			}
			rows[i] = row
		}
		ds.bySQL[key] = dashboard.QueryResult{Data: rows, Columns: set.Columns}
	}
	return ds, nil
}

// Lookup returns a copy of the dataset registered for sql.
func (d *Datasets) Lookup(sql string) (dashboard.QueryResult, bool) {
	if d == nil {
		return dashboard.QueryResult{}, false
	}
	res, ok := d.bySQL[sql]
	if !ok {
		return dashboard.QueryResult{}, false
	}
	return copyResult(res), true
}

// Len reports how many datasets are registered.
func (d *Datasets) Len() int {
	if d == nil {
		return 0
	}
	return len(d.bySQL)
}

// Substitute returns the dataset for sql, or a three-row placeholder with
// random values in [0,100) when nothing matches.
func (d *Datasets) Substitute(sql string, random func() float64) dashboard.QueryResult {
	if res, ok := d.Lookup(sql); ok {
		return res
	}
	rows := make([]dashboard.Row, len(genericCategories))
	for i, cat := range genericCategories {
		rows[i] = dashboard.Row{"Category": cat, "Value": random() * 100}
	}
	return dashboard.QueryResult{Data: rows, Columns: append([]string(nil), GenericColumns...)}
}

func copyResult(res dashboard.QueryResult) dashboard.QueryResult {
	rows := make([]dashboard.Row, len(res.Data))
	for i, row := range res.Data {
		cp := make(dashboard.Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		rows[i] = cp
	}
	return dashboard.QueryResult{Data: rows, Columns: append([]string(nil), res.Columns...)}
}
