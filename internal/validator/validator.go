// Package validator checks parsed payments against the merchant's business
// constraints.
package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrejuh/upiwatch/internal/model"
)

// Config holds the business constraints a payment is checked against.
type Config struct {
	// ReceiverToken is the merchant identity a non-empty receiver VPA must
	// contain.
	ReceiverToken string
	// MinAmount and MaxAmount bound the inclusive sane range in currency
	// units. Out-of-range amounts are flagged, never clamped.
	MinAmount float64
	MaxAmount float64
	// FreshnessWindow is how old a payment timestamp may be before it is
	// flagged as stale.
	FreshnessWindow time.Duration
}

// DefaultConfig returns the reference constraints.
func DefaultConfig() Config {
	return Config{
		ReceiverToken:   "hrejuh",
		MinAmount:       1,
		MaxAmount:       100000,
		FreshnessWindow: time.Hour,
	}
}

// Validator is a pure, stateless rule checker. Safe for concurrent use.
type Validator struct {
	cfg Config
	now func() time.Time
}

// New creates a validator with the given constraints.
func New(cfg Config) *Validator {
	return &Validator{cfg: cfg, now: time.Now}
}

// NewWithClock creates a validator with an injected clock for tests.
func NewWithClock(cfg Config, now func() time.Time) *Validator {
	return &Validator{cfg: cfg, now: now}
}

// Validate checks every rule independently and accumulates all failures.
// It never panics, whatever the input looks like.
func (v *Validator) Validate(payment model.ParsedPayment) model.ValidationResult {
	var errs []string

	if payment.Amount <= 0 {
		errs = append(errs, "amount must be greater than zero")
	}
	if payment.Amount < v.cfg.MinAmount || payment.Amount > v.cfg.MaxAmount {
		errs = append(errs, fmt.Sprintf("amount %.2f is outside the allowed range %.0f-%.0f",
			payment.Amount, v.cfg.MinAmount, v.cfg.MaxAmount))
	}
	if payment.ReceiverID != "" && v.cfg.ReceiverToken != "" &&
		!strings.Contains(strings.ToLower(payment.ReceiverID), strings.ToLower(v.cfg.ReceiverToken)) {
		errs = append(errs, fmt.Sprintf("receiver %q does not match the expected merchant identity",
			payment.ReceiverID))
	}
	if age := v.now().Sub(payment.Timestamp); age > v.cfg.FreshnessWindow {
		errs = append(errs, fmt.Sprintf("payment is stale: received %s ago, window is %s",
			age.Round(time.Second), v.cfg.FreshnessWindow))
	}

	return model.ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// IsReceiverError reports whether a validation error string came from the
// receiver-identity rule.
func IsReceiverError(msg string) bool {
	return strings.Contains(msg, "expected merchant identity")
}

// IsStalenessError reports whether a validation error string came from the
// freshness rule.
func IsStalenessError(msg string) bool {
	return strings.Contains(msg, "payment is stale")
}
