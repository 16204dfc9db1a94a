package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/cory-johannsen/companion/internal/storage/migrations"
)

// Direction selects which way Migrate moves the schema.
type Direction string

// Migration directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationResult reports the schema version after Migrate.
type MigrationResult struct {
	Version  uint
	Dirty    bool
	NoChange bool
}

// Migrate applies the embedded migrations to the database at dsn.
// steps of 0 migrates all the way in direction.
//
// Precondition: direction is Up or Down; steps >= 0.
// Postcondition: on success the result carries the resulting schema version.
func Migrate(dsn string, direction Direction, steps int) (MigrationResult, error) {
	src, err := iofs.New(migrations.Postgres, migrations.PostgresDir)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch direction {
	case Up:
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case Down:
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return MigrationResult{}, fmt.Errorf("invalid direction %q: must be %q or %q", direction, Up, Down)
	}

	res := MigrationResult{NoChange: errors.Is(err, migrate.ErrNoChange)}
	if err != nil && !res.NoChange {
		return res, fmt.Errorf("migrating %s: %w", direction, err)
	}
	res.Version, res.Dirty, _ = m.Version()
	return res, nil
}
