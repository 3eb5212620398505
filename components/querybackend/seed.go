package querybackend

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/seed.yaml
var defaultSeedYAML []byte

type seedDocument struct {
	Tables []SeedTable `yaml:"tables"`
}

// SeedTable is one demo table and its rows.
type SeedTable struct {
	Name    string       `yaml:"name"`
	Columns []SeedColumn `yaml:"columns"`
	Rows    [][]any      `yaml:"rows"`
}

// SeedColumn declares a column as text, int or real.
type SeedColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// DefaultSeed returns the built-in demo tables.
func DefaultSeed() []SeedTable {
	tables, err := DecodeSeed(bytes.NewReader(defaultSeedYAML))
	if err != nil {
		panic(fmt.Sprintf("querybackend: embedded seed is invalid: %v", err))
	}
	return tables
}

// DecodeSeed reads demo tables from YAML.
func DecodeSeed(r io.Reader) ([]SeedTable, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc seedDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("querybackend: parse seed: %w", err)
	}
	for _, table := range doc.Tables {
		if table.Name == "" || len(table.Columns) == 0 {
			return nil, fmt.Errorf("querybackend: seed table %q needs a name and columns", table.Name)
		}
		for _, col := range table.Columns {
			if _, err := columnType(col.Type); err != nil {
				return nil, fmt.Errorf("querybackend: seed table %s: %w", table.Name, err)
			}
		}
		for i, row := range table.Rows {
			if len(row) != len(table.Columns) {
				return nil, fmt.Errorf("querybackend: seed table %s row %d has %d values for %d columns",
					table.Name, i, len(row), len(table.Columns))
			}
		}
	}
	return doc.Tables, nil
}

func columnType(kind string) (string, error) {
	switch kind {
	case "text":
		return "VARCHAR(100)", nil
	case "int":
		return "INTEGER", nil
	case "real":
		return "DOUBLE PRECISION", nil
	default:
		return "", fmt.Errorf("unknown column type %q", kind)
	}
}

// Seed drops and recreates every table, then loads its rows in one transaction.
func Seed(ctx context.Context, db *sql.DB, dialect Dialect, tables []SeedTable) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("querybackend: begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if err := seedTable(ctx, tx, dialect, table); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("querybackend: commit seed: %w", err)
	}
	return nil
}

func seedTable(ctx context.Context, tx *sql.Tx, dialect Dialect, table SeedTable) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table.Name); err != nil {
		return fmt.Errorf("querybackend: drop %s: %w", table.Name, err)
	}
	defs := make([]string, len(table.Columns))
	names := make([]string, len(table.Columns))
	marks := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		kind, _ := columnType(col.Type)
		defs[i] = col.Name + " " + kind
		names[i] = col.Name
		marks[i] = dialect.Placeholder(i + 1)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", table.Name, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("querybackend: create %s: %w", table.Name, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table.Name, strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("querybackend: prepare %s: %w", table.Name, err)
	}
	defer stmt.Close()
	for i, row := range table.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("querybackend: insert %s row %d: %w", table.Name, i, err)
		}
	}
	return nil
}
