// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/hrejuh/upiwatch/internal/model"
)

// VerificationFilter defines filtering options for verification queries.
type VerificationFilter struct {
	Since  *time.Time
	Status model.VerificationStatus
	Limit  int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Bank template operations
	GetBankTemplates(ctx context.Context) ([]model.BankTemplate, error)
	SaveBankTemplates(ctx context.Context, templates []model.BankTemplate) error

	// Verification operations
	CreateVerification(ctx context.Context, record *model.VerificationRecord) error
	GetVerification(ctx context.Context, id string) (*model.VerificationRecord, error)
	GetVerificationByReference(ctx context.Context, upiReference string) (*model.VerificationRecord, error)
	GetVerifications(ctx context.Context, filter VerificationFilter) ([]model.VerificationRecord, error)
	UpdateVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error

	// Order operations
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrderByAmount(ctx context.Context, amount float64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	LinkVerification(ctx context.Context, orderID, verificationID string, autoVerified bool) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
