package postgres

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/curately/ResearchTools-Intelligence/internal/config"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// Migrator applies schema migrations from the configured source path.
type Migrator struct {
	cfg    config.DatabaseConfig
	logger logging.Logger
}

// NewMigrator builds a Migrator; migrations run over a dedicated short-lived
// connection, separate from the service pool.
func NewMigrator(cfg config.DatabaseConfig, log logging.Logger) *Migrator {
	return &Migrator{cfg: cfg, logger: log}
}

// Up applies all pending migrations.  A no-op when the schema is current.
func (m *Migrator) Up() error {
	mig, cleanup, err := m.open()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "applying migrations")
	}
	version, dirty, _ := mig.Version()
	m.logger.Info("migrations applied",
		logging.Any("version", version),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down() error {
	mig, cleanup, err := m.open()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mig.Steps(-1); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "rolling back migration")
	}
	return nil
}

func (m *Migrator) open() (*migrate.Migrate, func(), error) {
	db, err := sql.Open("pgx", BuildDSN(m.cfg))
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "opening migration connection")
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "initialising migration driver")
	}
	mig, err := migrate.NewWithDatabaseInstance(m.cfg.MigrationPath, m.cfg.DBName, driver)
	if err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "initialising migrator")
	}
	return mig, func() { db.Close() }, nil
}
