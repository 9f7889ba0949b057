// Package migrate applies the embedded postgres schema with golang-migrate
package migrate

import (
	"embed"
	"errors"
	"fmt"

	"kydu/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// New returns a migrator bound to databaseURL; the caller closes it
func New(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migrator: %w", err)
	}
	m.Log = zlog{log: logger.Named("migrate")}
	return m, nil
}

// Up applies every pending migration; being current is not an error
func Up(databaseURL string) error {
	return run(databaseURL, func(m *migrate.Migrate) error { return m.Up() })
}

// Down rolls back n migrations
func Down(databaseURL string, n int) error {
	if n <= 0 {
		return fmt.Errorf("down needs a positive step count, got %d", n)
	}
	return run(databaseURL, func(m *migrate.Migrate) error { return m.Steps(-n) })
}

// Version reports the applied version; ok is false on an empty database
func Version(databaseURL string) (version uint, dirty, ok bool, err error) {
	err = run(databaseURL, func(m *migrate.Migrate) error {
		v, d, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		version, dirty, ok = v, d, verr == nil
		return verr
	})
	return version, dirty, ok, err
}

func run(databaseURL string, fn func(*migrate.Migrate) error) error {
	m, err := New(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// zlog routes golang-migrate output through zerolog
type zlog struct{ log *logger.Logger }

func (z zlog) Printf(format string, v ...any) { z.log.Info().Msgf(format, v...) }
func (z zlog) Verbose() bool                  { return false }
