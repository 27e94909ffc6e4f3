// Package storage provides the SQLite persistence layer for templates,
// verification records and orders.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ChangePublisher receives the id of every order mutated by this store.
// The bridge hub satisfies it; a nil publisher disables notifications.
type ChangePublisher interface {
	Publish(orderID string)
}

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db        *sql.DB
	publisher ChangePublisher
	dbPath    string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// NewMemoryStorage creates an in-memory store, used by tests.
func NewMemoryStorage() (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteStorage{db: db, dbPath: ":memory:"}, nil
}

// SetPublisher wires a change publisher for order mutations. Must be called
// before the store is shared between goroutines.
func (s *SQLiteStorage) SetPublisher(p ChangePublisher) {
	s.publisher = p
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// notifyOrderChanged publishes a change notification if a publisher is set.
func (s *SQLiteStorage) notifyOrderChanged(orderID string) {
	if s.publisher != nil {
		s.publisher.Publish(orderID)
	}
}
