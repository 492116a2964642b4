package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Open connects to the database named by dsn and verifies the connection.
//
// postgres:// and postgresql:// DSNs use lib/pq. sqlite:// DSNs and bare
// file: URIs use the embedded SQLite driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("status store DSN not set")
	}

	driver, source, err := driverFor(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", driver, err)
	}
	return conn, nil
}

func driverFor(dsn string) (driver, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite3", "file:" + strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"):
		return "sqlite3", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported status store DSN scheme in %q", redact(dsn))
	}
}

// redact keeps the scheme and drops everything after it, which may hold
// credentials.
func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "..."
	}
	if i := strings.Index(dsn, ":"); i >= 0 {
		return dsn[:i+1] + "..."
	}
	return "..."
}
