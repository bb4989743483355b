package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация пула соединений
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ProductDB база данных каталога продуктов (SQLite)
type ProductDB struct {
	conn              *sql.DB
	appliedMigrations []string
}

// NewProductDB открывает базу каталога с настройками пула по умолчанию
func NewProductDB(dbPath string) (*ProductDB, error) {
	return NewProductDBWithConfig(dbPath, DBConfig{})
}

// isInMemoryDB определяет, что путь относится к in-memory SQLite
func isInMemoryDB(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}

	// Формат file:memdb?mode=memory&cache=shared также хранит БД в памяти
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// buildDSN добавляет параметры драйвера к пути базы.
// Параметры DSN применяются к каждому соединению пула.
func buildDSN(dbPath string) string {
	params := []string{"_busy_timeout=5000", "_foreign_keys=on"}
	if !isInMemoryDB(dbPath) {
		// WAL: чтение каталога не ждет записи прохода кластеризации
		params = append(params, "_journal_mode=WAL")
	}

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + strings.Join(params, "&")
}

// NewProductDBWithConfig создает подключение к базе каталога с конфигурацией
func NewProductDBWithConfig(dbPath string, config DBConfig) (*ProductDB, error) {
	// Для in-memory SQLite требуется ровно одно соединение,
	// иначе каждое новое соединение получит пустую БД без таблиц
	if isInMemoryDB(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	conn, err := sql.Open("sqlite3", buildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open product database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		// SQLite плохо справляется с большим количеством одновременных соединений
		conn.SetMaxOpenConns(10)
	}

	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}

	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping product database: %w", err)
	}

	applied, err := applyMigrations(conn, productMigrations())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize product schema: %w", err)
	}

	return &ProductDB{conn: conn, appliedMigrations: applied}, nil
}

// Close закрывает подключение к базе данных
func (db *ProductDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *ProductDB) Ping() error {
	return db.conn.Ping()
}

// GetDB возвращает указатель на sql.DB для прямого доступа
func (db *ProductDB) GetDB() *sql.DB {
	return db.conn
}

// AppliedMigrations миграции, примененные при открытии базы
func (db *ProductDB) AppliedMigrations() []string {
	return db.appliedMigrations
}
