package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS bank_templates (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					bank_name TEXT NOT NULL,
					email_domain_filter TEXT NOT NULL,
					subject_pattern TEXT,
					amount_pattern TEXT NOT NULL,
					reference_pattern TEXT,
					sender_id_pattern TEXT,
					receiver_id_pattern TEXT,
					transaction_id_pattern TEXT,
					priority INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS payment_verifications (
					id TEXT PRIMARY KEY,
					order_id TEXT,
					bank_name TEXT NOT NULL,
					amount REAL NOT NULL,
					upi_reference TEXT,
					sender_id TEXT,
					receiver_id TEXT,
					transaction_id TEXT,
					status TEXT NOT NULL,
					errors TEXT,
					payment_time DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_verifications_status ON payment_verifications(status)`,

				`CREATE TABLE IF NOT EXISTS orders (
					id TEXT PRIMARY KEY,
					status TEXT NOT NULL DEFAULT 'pending',
					amount REAL NOT NULL,
					payment_confirmed INTEGER NOT NULL DEFAULT 0,
					auto_verified INTEGER NOT NULL DEFAULT 0,
					payment_verification_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_orders_status ON orders(status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Unique UPI reference for duplicate detection",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE UNIQUE INDEX IF NOT EXISTS idx_verifications_reference
				ON payment_verifications(upi_reference)
				WHERE upi_reference IS NOT NULL AND upi_reference != ''`)
			if err != nil {
				return fmt.Errorf("failed to create reference index: %w", err)
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Pending-order lookup by amount",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_orders_amount
				ON orders(amount) WHERE status = 'pending'`)
			if err != nil {
				return fmt.Errorf("failed to create amount index: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_versions (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// schemaVersion returns the highest applied migration version.
func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_versions`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
