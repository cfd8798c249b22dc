// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quickly-quiz/store"
)

// Supported DATABASE_TYPE values
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open connects to PostgreSQL or SQLite and verifies the connection.
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case TypePostgres:
		driver = "postgres"
	case TypeSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	if dbType == TypeSQLite {
		url = sqliteDSN(url)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// SQLite has a single writer, and every connection to :memory: is a
	// separate database.
	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

// sqliteDSN turns on foreign key enforcement for every connection, which
// SQLite leaves off by default.
func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=foreign_keys") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)"
}

// Migrate applies all pending migrations. Safe to call on every start.
func Migrate(ctx context.Context, conn *sql.DB, dbType string) error {
	dialect := goose.DialectPostgres
	if dbType == TypeSQLite {
		dialect = goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, conn, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied",
			"version", r.Source.Version,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}

	return nil
}

// Store implements store.Store on top of database/sql.
type Store struct {
	conn  *sql.DB
	users *userRepo
	polls *pollRepo
	votes *voteRepo
}

func NewStore(conn *sql.DB) *Store {
	return &Store{
		conn:  conn,
		users: &userRepo{db: conn},
		polls: &pollRepo{db: conn},
		votes: &voteRepo{db: conn},
	}
}

func (s *Store) Users() store.Users { return s.users }
func (s *Store) Polls() store.Polls { return s.polls }
func (s *Store) Votes() store.Votes { return s.votes }

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.conn }

func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close()
}

// isUniqueViolation reports whether err is a unique or primary key
// violation from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}

	return false
}

// placeholders appends vals to args and returns "$n, $n+1, ..." for them.
func placeholders(args *[]any, vals []string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		*args = append(*args, v)
		parts[i] = "$" + strconv.Itoa(len(*args))
	}
	return strings.Join(parts, ", ")
}
