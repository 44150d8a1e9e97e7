// Package migration applies the versioned SQL schema with golang-migrate.
// The schema ships embedded in the binary; a directory on disk can
// override it during development.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator drives schema changes against one postgres database
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// Source selects where migration files are read from. Exactly one of FS
// or Dir should be set; Dir wins when both are.
type Source struct {
	FS  fs.FS
	Dir string
}

func (s Source) open() (source.Driver, string, error) {
	if s.Dir != "" {
		return nil, "file://" + s.Dir, nil
	}
	if s.FS == nil {
		return nil, "", errors.New("migration source not configured")
	}
	d, err := iofs.New(s.FS, ".")
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	return d, "", nil
}

// New creates a Migrator over an open *sql.DB
func New(db *sql.DB, src Source, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres driver: %w", err)
	}
	sd, url, err := src.open()
	if err != nil {
		return nil, err
	}

	var m *migrate.Migrate
	if sd != nil {
		m, err = migrate.NewWithInstance("iofs", sd, "postgres", driver)
	} else {
		m, err = migrate.NewWithDatabaseInstance(url, "postgres", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return newMigrator(m, logger), nil
}

// NewFromURL creates a Migrator from a postgres:// connection URL
func NewFromURL(databaseURL string, src Source, logger *zap.Logger) (*Migrator, error) {
	sd, url, err := src.open()
	if err != nil {
		return nil, err
	}

	var m *migrate.Migrate
	if sd != nil {
		m, err = migrate.NewWithSourceInstance("iofs", sd, databaseURL)
	} else {
		m, err = migrate.New(url, databaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return newMigrator(m, logger), nil
}

func newMigrator(m *migrate.Migrate, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{m: m, logger: logger}
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up)
}

// Down rolls back every applied migration
func (m *Migrator) Down() error {
	return m.apply("down", m.m.Down)
}

// Steps applies n migrations; negative n rolls back
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps %d", n), func() error { return m.m.Steps(n) })
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	return m.apply(fmt.Sprintf("goto %d", version), func() error { return m.m.Migrate(version) })
}

func (m *Migrator) apply(op string, fn func() error) error {
	m.logger.Info("Running migrations", zap.String("op", op))
	if err := fn(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Schema already up to date", zap.String("op", op))
			return nil
		}
		return fmt.Errorf("migration %s: %w", op, err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("Migrations applied",
		zap.String("op", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Version reports the applied version. A fresh database reports 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied and clears the dirty flag without
// running any SQL
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	return errors.Join(sourceErr, dbErr)
}
