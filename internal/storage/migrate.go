package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"pocketpal/internal/core"
)

// LatestSchemaVersion is the highest migration shipped in migrations/.
const LatestSchemaVersion uint = 2

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the database at dsn to exactly target and returns the
// resulting version. It never migrates down: a newer persisted schema, a
// dirty state or a held lock is reported as core.ErrSchemaConflict.
func RunMigrations(dsn string, target uint) (uint, error) {
	if target == 0 || target > LatestSchemaVersion {
		return 0, fmt.Errorf("%w: unknown schema version %d (latest %d)", core.ErrSchemaConflict, target, LatestSchemaVersion)
	}

	// Create a separate connection for migrations to avoid interfering with the main connection
	migrateDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return 0, fmt.Errorf("%w: open migration database: %w", core.ErrStorageUnavailable, err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("%w: create sqlite driver: %w", core.ErrStorageUnavailable, err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("%w: create migrate instance: %w", core.ErrStorageUnavailable, err)
	}
	defer m.Close()

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		current = 0
	case err != nil:
		return 0, schemaConflict("read schema version", err)
	}
	if dirty {
		return current, fmt.Errorf("%w: schema version %d is dirty", core.ErrSchemaConflict, current)
	}
	if current > target {
		return current, fmt.Errorf("%w: persisted schema version %d is newer than %d", core.ErrSchemaConflict, current, target)
	}
	if current == target {
		return current, nil
	}

	if err := m.Migrate(target); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return current, schemaConflict("run migrations", err)
	}
	return target, nil
}

func schemaConflict(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrSchemaConflict, op, err)
}
