package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/model"
)

// CreateOrder inserts a new order in pending state.
func (s *SQLiteStorage) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOrder(order); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, status, amount, payment_confirmed, auto_verified, payment_verification_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, string(order.Status), order.Amount,
		order.PaymentConfirmed, order.AutoVerified, nullIfEmpty(order.PaymentVerificationID),
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	s.notifyOrderChanged(order.ID)
	return nil
}

// GetOrder retrieves an order by id. Also satisfies bridge.OrderReader.
func (s *SQLiteStorage) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, orderSelect+` WHERE id = ?`, id)
	return scanOrder(row)
}

// GetOrderByAmount returns the oldest pending order with the given amount,
// used to correlate a payment that arrived without an order reference.
func (s *SQLiteStorage) GetOrderByAmount(ctx context.Context, amount float64) (*model.Order, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidOrder)
	}

	row := s.db.QueryRowContext(ctx,
		orderSelect+` WHERE status = 'pending' AND amount = ? ORDER BY created_at, rowid LIMIT 1`,
		amount)
	return scanOrder(row)
}

// UpdateOrderStatus transitions an order to a new fulfilment status.
func (s *SQLiteStorage) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s", common.ErrNotFound, id)
	}

	s.notifyOrderChanged(id)
	return nil
}

// LinkVerification attaches a verification record to an order, confirms the
// payment and moves a pending order to paid.
func (s *SQLiteStorage) LinkVerification(ctx context.Context, orderID, verificationID string, autoVerified bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(orderID, "orderID"); err != nil {
		return err
	}
	if err := validateString(verificationID, "verificationID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET
			payment_verification_id = ?,
			payment_confirmed = 1,
			auto_verified = ?,
			status = CASE WHEN status = 'pending' THEN 'paid' ELSE status END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		verificationID, autoVerified, orderID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to link verification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check link result: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("%w: order %s", common.ErrNotFound, orderID)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE payment_verifications SET order_id = ? WHERE id = ?`,
		orderID, verificationID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update verification order link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link: %w", err)
	}

	slog.Info("Linked verification to order",
		"order_id", orderID,
		"verification_id", verificationID,
		"auto_verified", autoVerified)
	s.notifyOrderChanged(orderID)
	return nil
}

const orderSelect = `
	SELECT id, status, amount, payment_confirmed, auto_verified,
		payment_verification_id, created_at, updated_at
	FROM orders`

func scanOrder(row rowScanner) (*model.Order, error) {
	order := &model.Order{}
	var status string
	var verificationID sql.NullString

	err := row.Scan(
		&order.ID, &status, &order.Amount, &order.PaymentConfirmed,
		&order.AutoVerified, &verificationID, &order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	order.Status = model.OrderStatus(status)
	order.PaymentVerificationID = verificationID.String
	return order, nil
}
