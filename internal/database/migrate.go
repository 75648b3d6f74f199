package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"github.com/MikeMC777/bookstore/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every pending up migration. It is a no-op when the schema
// is already current.
func Migrate(cfg config.Postgres) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(cfg))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("no new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.Info().Uint("version", version).Msg("migrations applied")
	return nil
}

// migrateURL rewrites the pgx DSN to the pgx5:// scheme the migrate driver
// registers.
func migrateURL(cfg config.Postgres) string {
	return "pgx5://" + strings.TrimPrefix(cfg.DSN(), "postgres://")
}
