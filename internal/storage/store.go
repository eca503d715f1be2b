// Package storage is the ledger's persistent keyed store: an SQLite file
// holding the transactions and categories collections with their secondary
// indexes, versioned through embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/stephenafamo/bob"

	"pocketpal/internal/core"
	"pocketpal/internal/notify"

	_ "modernc.org/sqlite"
)

// sqlite pragmas applied to every connection of the pool
const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"

// Store is an open ledger database. It is safe for concurrent use; each
// collection serializes its own operations.
type Store struct {
	db      *sql.DB
	exec    bob.Executor
	path    string
	version uint
	hub     *notify.Hub
	closed  atomic.Bool

	transactions *Table[core.Transaction]
	categories   *Table[core.Category]
}

// Open creates or opens the database file at path and upgrades it to
// schemaVersion. Failures wrap core.ErrStorageUnavailable or
// core.ErrSchemaConflict.
func Open(ctx context.Context, path string, schemaVersion uint) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty database path", core.ErrStorageUnavailable)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", core.ErrStorageUnavailable, err)
	}

	dsn := path + "?" + pragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %w", core.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", core.ErrStorageUnavailable, err)
	}

	version, err := RunMigrations(dsn, schemaVersion)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	s := &Store{
		db:      db,
		exec:    bob.NewDB(db),
		path:    path,
		version: version,
		hub:     notify.NewHub(),
	}
	s.transactions = newTransactionsTable(s)
	s.categories = newCategoriesTable(s)

	slog.InfoContext(ctx, "Ledger store opened",
		"path", path,
		"schema_version", version)

	return s, nil
}

// Close releases the database. Later operations fail with
// core.ErrStorageUnavailable.
func (s *Store) Close() error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.available(); err != nil {
		return err
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorageUnavailable, err)
	}
	return nil
}

// SchemaVersion is the schema version the store was opened at.
func (s *Store) SchemaVersion() uint {
	if s == nil {
		return 0
	}
	return s.version
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Notifications is the hub receiving a signal after every committed insert.
func (s *Store) Notifications() *notify.Hub {
	if s == nil {
		return nil
	}
	return s.hub
}

func (s *Store) Transactions() *Table[core.Transaction] {
	if s == nil {
		return nil
	}
	return s.transactions
}

func (s *Store) Categories() *Table[core.Category] {
	if s == nil {
		return nil
	}
	return s.categories
}

var errNotOpen = errors.New("store is not open")

func (s *Store) available() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: %w", core.ErrStorageUnavailable, errNotOpen)
	}
	if s.closed.Load() {
		return fmt.Errorf("%w: store is closed", core.ErrStorageUnavailable)
	}
	return nil
}
