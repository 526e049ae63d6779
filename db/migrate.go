package migrate

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigration runs all migrations in the specified directory.
func RunMigration(client *sql.DB, dir string) (*migrate.Migrate, error) {
	m, err := newMigrateInstance(client, dir)
	if err != nil {
		return nil, err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, err
	}
	return m, nil
}

func newMigrateInstance(client *sql.DB, dir string) (*migrate.Migrate, error) {
	driver, err := pgdriver.WithInstance(client, &pgdriver.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
}
