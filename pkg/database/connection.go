package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects SQL syntax differences between the supported backends
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) driver() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// DialectFor picks the backend from a database setting: postgres URLs use lib/pq, anything else is a SQLite path
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// ConnectDB opens the database named by dsn and returns it with its dialect
func ConnectDB(dsn string) (*sql.DB, Dialect, error) {
	dialect := DialectFor(dsn)

	if dialect == SQLite {
		// Expand tilde to home directory if present
		if strings.HasPrefix(dsn, "~") {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, dialect, err
			}
			dsn = homeDir + dsn[1:]
		}

		// Create the directory structure if it doesn't exist
		if dsn != ":memory:" {
			dbDir := filepath.Dir(dsn)
			if dbDir != "." {
				if err := os.MkdirAll(dbDir, 0755); err != nil {
					return nil, dialect, err
				}
			}
		}
	}

	db, err := sql.Open(dialect.driver(), dsn)
	if err != nil {
		return nil, dialect, fmt.Errorf("open %s database: %w", dialect.driver(), err)
	}
	if dialect == SQLite {
		// a single connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}
	return db, dialect, nil
}

// EnsureSchema creates the snapshot and blob tables if they don't exist
func EnsureSchema(db *sql.DB, dialect Dialect) error {
	blobType := "BLOB"
	if dialect == Postgres {
		blobType = "BYTEA"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS blobs (
			ref TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			mime TEXT NOT NULL,
			size INTEGER NOT NULL,
			data %s NOT NULL,
			created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, blobType),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func rebind(dialect Dialect, query string) string {
	if dialect != Postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
