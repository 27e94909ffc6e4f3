package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hrejuh/upiwatch/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrNilParameter        = errors.New("parameter cannot be nil")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidVerification = errors.New("invalid verification record")
	ErrInvalidOrder        = errors.New("invalid order")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateVerification validates a verification record before insert.
func validateVerification(record *model.VerificationRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidVerification)
	}
	if record.BankName == "" {
		return fmt.Errorf("%w: missing bank name", ErrInvalidVerification)
	}
	if record.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidVerification)
	}
	if !record.Status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, record.Status)
	}
	return nil
}

// validateOrder validates an order before insert.
func validateOrder(order *model.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order", ErrNilParameter)
	}
	if order.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidOrder)
	}
	switch order.Status {
	case model.OrderPending, model.OrderPaid, model.OrderProcessing,
		model.OrderShipped, model.OrderDelivered:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, order.Status)
	}
	return nil
}
