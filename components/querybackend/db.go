package querybackend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

const pingTimeout = 10 * time.Second

// Dialect captures the handful of SQL differences the backend cares about.
type Dialect string

const (
	DialectSQLServer Dialect = "sqlserver"
	DialectPostgres  Dialect = "pgx"
	DialectMySQL     Dialect = "mysql"
	DialectSQLite    Dialect = "sqlite"
)

// ParseDialect maps a driver name or common alias to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlserver", "mssql":
		return DialectSQLServer, nil
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	case "sqlite", "sqlite3", "":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("querybackend: unsupported driver %q", name)
	}
}

// Placeholder returns the bind parameter for the 1-based position n.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case DialectPostgres:
		return fmt.Sprintf("$%d", n)
	case DialectSQLServer:
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

// SelectTop returns a query selecting the first n rows of table.
func (d Dialect) SelectTop(n int, table string) string {
	if d == DialectSQLServer {
		return fmt.Sprintf("SELECT TOP %d * FROM %s", n, table)
	}
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, n)
}

// Open connects to the database behind driver and verifies it answers.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("querybackend: open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// in-memory databases live and die with their connection
		db.SetMaxOpenConns(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("querybackend: ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}
