package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/sibintb/submanager/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded migrations of driver to the database at
// dsn. It uses its own connection, which the migrator closes.
func RunMigrations(driver, dsn string) error {
	const op = "storage.RunMigrations"

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var (
		instance database.Driver
		dir      string
	)
	switch driver {
	case config.DriverPostgres:
		instance, err = pgxv5.WithInstance(db, &pgxv5.Config{})
		dir = "migrations/postgres"
	case config.DriverSQLite:
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
		dir = "migrations/sqlite"
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		db.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		db.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
