package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const migrationsTableName = "schema_migrations"

// Migration именованная миграция схемы
type Migration struct {
	Name  string
	Apply func(*sql.Tx) error
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(db *sql.DB, name string) (bool, error) {
	var appliedAt sql.NullTime
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := db.QueryRow(query, name).Scan(&appliedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}

	return appliedAt.Valid, nil
}

// applyMigrations выполняет каждую миграцию ровно один раз, в своей транзакции
// вместе с отметкой в schema_migrations. Возвращает имена примененных сейчас миграций.
func applyMigrations(db *sql.DB, migrations []Migration) ([]string, error) {
	if err := ensureMigrationTable(db); err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		done, err := isMigrationApplied(db, m.Name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return applied, fmt.Errorf("failed to begin migration %s: %w", m.Name, err)
		}
		if err := m.Apply(tx); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %s failed: %w", m.Name, err)
		}

		query := fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
		if _, err := tx.Exec(query, m.Name, time.Now().UTC()); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to mark migration %s as applied: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %s: %w", m.Name, err)
		}
		applied = append(applied, m.Name)
	}

	return applied, nil
}
