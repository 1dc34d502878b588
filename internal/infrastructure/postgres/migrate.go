package postgres

import (
	"database/sql"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// RunMigrations aplica las migraciones pendientes antes de arrancar el
// servidor. Usa una conexión database/sql aparte (driver pgx stdlib) porque
// golang-migrate no trabaja sobre pgxpool.
// Devuelve (applied=false, nil) si no había migraciones nuevas.
func RunMigrations(dsn, sourceURL string) (bool, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return false, fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return false, fmt.Errorf("ping migration connection: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return false, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return false, fmt.Errorf("migrate instance: %w", err)
	}

	upErr := m.Up()
	srcErr, dbErr := m.Close()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return false, fmt.Errorf("apply migrations: %w", upErr)
	}
	if srcErr != nil {
		return false, fmt.Errorf("migration source: %w", srcErr)
	}
	if dbErr != nil {
		return false, fmt.Errorf("migration db: %w", dbErr)
	}
	return upErr != migrate.ErrNoChange, nil
}
