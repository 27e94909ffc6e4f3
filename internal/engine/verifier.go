// Package engine orchestrates the payment verification pipeline: parse an
// email, validate the candidate, persist the outcome and link it to an
// order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/parser"
	"github.com/hrejuh/upiwatch/internal/service"
	"github.com/hrejuh/upiwatch/internal/validator"
)

// ErrNoTemplateMatched is returned when no bank template yields a valid
// amount for an email. The email stays unmatched for downstream
// manual-review handling; this is terminal for that single email only.
var ErrNoTemplateMatched = errors.New("no bank template matched the email")

// Outcome reports what one email produced.
type Outcome struct {
	Record *model.VerificationRecord
	Order  *model.Order
	Result model.ValidationResult
}

// Verifier runs emails through the verification pipeline.
type Verifier struct {
	storage   service.Storage
	parser    *parser.Parser
	validator *validator.Validator
}

// New creates a verifier with the given dependencies.
func New(storage service.Storage, p *parser.Parser, v *validator.Validator) *Verifier {
	return &Verifier{
		storage:   storage,
		parser:    p,
		validator: v,
	}
}

// ProcessEmail verifies a payment confirmation email with no order context:
// a fully valid payment is correlated against the oldest pending order with
// the same amount. Returns ErrNoTemplateMatched when parsing produced
// nothing.
func (v *Verifier) ProcessEmail(ctx context.Context, email model.EmailMessage) (*Outcome, error) {
	return v.process(ctx, email, "")
}

// ProcessEmailForOrder verifies an email against a known order, as when the
// checkout page reported which order the customer was paying for.
func (v *Verifier) ProcessEmailForOrder(ctx context.Context, email model.EmailMessage, orderID string) (*Outcome, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id", common.ErrMissingConfig)
	}
	return v.process(ctx, email, orderID)
}

func (v *Verifier) process(ctx context.Context, email model.EmailMessage, orderID string) (*Outcome, error) {
	payment := v.parser.Parse(email)
	if payment == nil {
		slog.Info("Email did not match any template",
			"email_id", email.ID,
			"from", email.FromAddress)
		return nil, ErrNoTemplateMatched
	}

	result := v.validator.Validate(*payment)
	status := disposition(result)

	record := &model.VerificationRecord{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		BankName:     payment.BankName,
		Amount:       payment.Amount,
		UPIReference: payment.UPIReference,
		SenderID:     payment.SenderID,
		ReceiverID:   payment.ReceiverID,
		Status:       status,
		Errors:       result.Errors,
		PaymentTime:  payment.Timestamp,
	}
	if payment.TransactionID != nil {
		record.TransactionID = *payment.TransactionID
	}

	err := common.WithRetry(ctx, func() error {
		createErr := v.storage.CreateVerification(ctx, record)
		if errors.Is(createErr, common.ErrDuplicateEntry) {
			return &common.RetryableError{Err: createErr, Retryable: false}
		}
		return createErr
	}, service.RetryOptions{MaxAttempts: 3})

	if err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return v.recordDuplicate(ctx, record, result)
		}
		return nil, fmt.Errorf("failed to persist verification: %w", err)
	}

	outcome := &Outcome{Record: record, Result: result}
	if status != model.VerificationVerified {
		slog.Info("Payment held, not auto-verified",
			"verification_id", record.ID,
			"status", status,
			"errors", len(result.Errors))
		return outcome, nil
	}

	order, err := v.resolveOrder(ctx, payment, orderID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			slog.Warn("Verified payment has no matching order",
				"verification_id", record.ID,
				"amount", payment.Amount)
			return outcome, nil
		}
		return nil, fmt.Errorf("failed to resolve order: %w", err)
	}

	if err := v.storage.LinkVerification(ctx, order.ID, record.ID, true); err != nil {
		return nil, fmt.Errorf("failed to link verification: %w", err)
	}

	linked, err := v.storage.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read linked order: %w", err)
	}
	record.OrderID = linked.ID
	outcome.Order = linked
	return outcome, nil
}

// recordDuplicate persists a duplicate-reference disposition without
// touching any order.
func (v *Verifier) recordDuplicate(ctx context.Context, record *model.VerificationRecord, result model.ValidationResult) (*Outcome, error) {
	existing, err := v.storage.GetVerificationByReference(ctx, record.UPIReference)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up duplicate reference: %w", err)
	}
	if existing != nil {
		slog.Warn("Duplicate UPI reference",
			"reference", record.UPIReference,
			"existing_verification", existing.ID)
	}

	record.ID = uuid.NewString()
	record.Status = model.VerificationDuplicate
	record.UPIReference = "" // keep the unique index out of the way
	if err := v.storage.CreateVerification(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist duplicate record: %w", err)
	}
	return &Outcome{Record: record, Result: result}, nil
}

// resolveOrder finds the order a verified payment belongs to.
func (v *Verifier) resolveOrder(ctx context.Context, payment *model.ParsedPayment, orderID string) (*model.Order, error) {
	if orderID != "" {
		return v.storage.GetOrder(ctx, orderID)
	}
	return v.storage.GetOrderByAmount(ctx, payment.Amount)
}

// RequestManualVerification is intentionally unsupported in this service;
// manual review happens in the admin console. Callers get a typed error,
// not a generic failure.
func (v *Verifier) RequestManualVerification(_ context.Context, _ string) error {
	return common.ErrManualVerificationUnsupported
}

// disposition maps a validation result onto a verification status. A clean
// result auto-verifies. Failures limited to receiver identity or staleness
// are held for manual review; anything else fails outright.
func disposition(result model.ValidationResult) model.VerificationStatus {
	if result.IsValid {
		return model.VerificationVerified
	}
	for _, msg := range result.Errors {
		if !validator.IsReceiverError(msg) && !validator.IsStalenessError(msg) {
			return model.VerificationFailed
		}
	}
	return model.VerificationManual
}
