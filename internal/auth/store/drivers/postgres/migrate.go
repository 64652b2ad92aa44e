package postgres

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/store/drivers/postgres/migrations"
)

// ApplyMigrations applies any pending migrations embedded in the binary.
func (s *Store) ApplyMigrations() error {
	driver, err := pgx.WithInstance(s.db, &pgx.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
