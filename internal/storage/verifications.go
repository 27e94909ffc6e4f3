package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/service"
)

// CreateVerification persists a new verification record. A UPI reference
// that already exists is reported as common.ErrDuplicateEntry so the caller
// can record a duplicate disposition instead.
func (s *SQLiteStorage) CreateVerification(ctx context.Context, record *model.VerificationRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVerification(record); err != nil {
		return err
	}

	var errorsJSON *string
	if len(record.Errors) > 0 {
		data, err := json.Marshal(record.Errors)
		if err != nil {
			return fmt.Errorf("failed to marshal validation errors: %w", err)
		}
		str := string(data)
		errorsJSON = &str
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_verifications (
			id, order_id, bank_name, amount, upi_reference, sender_id,
			receiver_id, transaction_id, status, errors, payment_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, nullIfEmpty(record.OrderID), record.BankName, record.Amount,
		nullIfEmpty(record.UPIReference), record.SenderID, record.ReceiverID,
		record.TransactionID, string(record.Status), errorsJSON, record.PaymentTime,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: upi reference %s", common.ErrDuplicateEntry, record.UPIReference)
		}
		return fmt.Errorf("failed to create verification: %w", err)
	}

	slog.Info("Created verification record",
		"id", record.ID,
		"bank", record.BankName,
		"status", record.Status)
	return nil
}

// GetVerification retrieves a verification record by id.
func (s *SQLiteStorage) GetVerification(ctx context.Context, id string) (*model.VerificationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, verificationSelect+` WHERE id = ?`, id)
	return scanVerification(row)
}

// GetVerificationByReference retrieves a verification record by its UPI
// reference number.
func (s *SQLiteStorage) GetVerificationByReference(ctx context.Context, upiReference string) (*model.VerificationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(upiReference, "upiReference"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, verificationSelect+` WHERE upi_reference = ?`, upiReference)
	return scanVerification(row)
}

// GetVerifications returns records matching the filter, newest first.
func (s *SQLiteStorage) GetVerifications(ctx context.Context, filter service.VerificationFilter) ([]model.VerificationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := verificationSelect
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Since != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *filter.Since)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verifications: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var records []model.VerificationRecord
	for rows.Next() {
		record, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verifications: %w", err)
	}
	return records, nil
}

// UpdateVerificationStatus transitions a record to a new status.
func (s *SQLiteStorage) UpdateVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE payment_verifications SET status = ? WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: verification %s", common.ErrNotFound, id)
	}
	return nil
}

const verificationSelect = `
	SELECT id, order_id, bank_name, amount, upi_reference, sender_id,
		receiver_id, transaction_id, status, errors, payment_time, created_at
	FROM payment_verifications`

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerification(row rowScanner) (*model.VerificationRecord, error) {
	record := &model.VerificationRecord{}
	var orderID, upiReference, transactionID, errorsJSON sql.NullString
	var status string

	err := row.Scan(
		&record.ID, &orderID, &record.BankName, &record.Amount,
		&upiReference, &record.SenderID, &record.ReceiverID,
		&transactionID, &status, &errorsJSON,
		&record.PaymentTime, &record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan verification: %w", err)
	}

	record.OrderID = orderID.String
	record.UPIReference = upiReference.String
	record.TransactionID = transactionID.String
	record.Status = model.VerificationStatus(status)
	if errorsJSON.Valid {
		if err := json.Unmarshal([]byte(errorsJSON.String), &record.Errors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validation errors: %w", err)
		}
	}
	return record, nil
}

// nullIfEmpty maps "" to NULL so unique indexes ignore absent values.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
