package db

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	_ "github.com/lib/pq" // Import PostgreSQL driver to initialize the database connection

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/db/dsn"
)

const MigrationTable = "goose_db_version"

type migrateFunc func(ctx context.Context, db *sql.DB, dir string) error

type migrator struct {
	dsn string
	cfg *config.Config
}

type Migration struct {
	Downgrade bool
}

type Migrator interface {
	MigrateToLatest(ctx context.Context, migration Migration) error
	MigrateTo(ctx context.Context, migration Migration, version int64) error
	Status(ctx context.Context) error
	Create(name string) error
}

func NewMigrator(cfg *config.Config) (Migrator, error) {
	dsn, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	return &migrator{
		dsn: dsn,
		cfg: cfg,
	}, nil
}

// MigrateToLatest runs migrations onto the latest version
// For migrations with Downgrade false, it runs all migrations up to and including the latest version
// For migrations with Downgrade true, it downgrades the latest version
func (m *migrator) MigrateToLatest(
	ctx context.Context,
	migration Migration,
) error {
	return m.run(ctx, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownContext(ctx, db, dir)
		}

		return goose.UpContext(ctx, db, dir)
	})
}

// MigrateTo runs migrations up-to a specific version
// For migrations with Downgrade false, it migrates up to the specified version
// For migrations with Downgrade true, it downgrades until the DB is the specified version
func (m *migrator) MigrateTo(
	ctx context.Context,
	migration Migration,
	version int64,
) error {
	return m.run(ctx, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownToContext(ctx, db, dir, version)
		}

		return goose.UpToContext(ctx, db, dir, version)
	})
}

// Status reports the applied and pending migrations.
func (m *migrator) Status(ctx context.Context) error {
	return m.run(ctx, func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.StatusContext(ctx, db, dir)
	})
}

// Create scaffolds a timestamped SQL migration file in the configured
// migrations directory.
func (m *migrator) Create(name string) error {
	return goose.Create(nil, m.cfg.Database.Migrations, name, "sql")
}

func (m *migrator) run(ctx context.Context, f migrateFunc) error {
	dbCon, err := goose.OpenDBWithDriver(string(goose.DialectPostgres), m.dsn)
	if err != nil {
		return err
	}
	defer dbCon.Close()

	goose.SetTableName(MigrationTable)

	return f(ctx, dbCon, m.cfg.Database.Migrations)
}
