// Package store persists learner progression and the model request log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/AlexMoto69/uplearn/internal/lock"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle and hands out repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
	locker  lock.Locker
}

// Option configures a Store.
type Option func(*Store)

// WithLocker replaces the in-process per-user lock, e.g. with a
// lock.RedisLocker when several processes share one database.
func WithLocker(l lock.Locker) Option {
	return func(s *Store) { s.locker = l }
}

// Open connects to dsn and migrates the schema. DSNs starting with
// postgres:// or postgresql:// use Postgres; anything else is a SQLite
// file path or "file:" URI.
func Open(dsn string, opts ...Option) (*Store, error) {
	driverName, dialectName := "sqlite", dialect.SQLite
	if isPostgres(dsn) {
		driverName, dialectName = "pgx", dialect.Postgres
	} else {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialectName == dialect.SQLite {
		// One writer at a time; shared-cache memory databases also
		// need every statement on the same connection.
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:      db,
		drv:     entsql.OpenDB(dialectName, db),
		dialect: dialectName,
		locker:  lock.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := migrate(context.Background(), s.drv); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// ProgressRepo returns the progression repository backed by this store.
func (s *Store) ProgressRepo() *ProgressRepo {
	return &ProgressRepo{db: s.db, dialect: s.dialect, locker: s.locker}
}

// EventRepo returns the model request log backed by this store.
func (s *Store) EventRepo() *EventLog {
	return &EventLog{db: s.db, dialect: s.dialect}
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// sqliteDSN appends the connection pragmas unless the caller set them.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	if !strings.Contains(dsn, "mode=memory") && !strings.Contains(dsn, ":memory:") {
		params += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params
}

// DefaultDBPath resolves the database location in priority order:
// 1. UPLEARN_DB environment variable
// 2. DATABASE_URL environment variable
// 3. $XDG_DATA_HOME/uplearn/uplearn.db
// 4. ~/.local/share/uplearn/uplearn.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("UPLEARN_DB"); p != "" {
		return p, EnsureDir(p)
	}
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u, EnsureDir(u)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "uplearn", "uplearn.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of a SQLite path. Postgres URLs
// and in-memory databases are left alone.
func EnsureDir(dsn string) error {
	if isPostgres(dsn) || strings.Contains(dsn, "mode=memory") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
