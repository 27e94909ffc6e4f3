package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrejuh/upiwatch/internal/model"
)

func validPayment() model.ParsedPayment {
	return model.ParsedPayment{
		BankName:     "PhonePe",
		Amount:       1234.56,
		UPIReference: "123456789012",
		ReceiverID:   "hrejuh@upi",
		Timestamp:    time.Now(),
	}
}

func TestValidate_ValidPayment(t *testing.T) {
	v := New(DefaultConfig())

	result := v.Validate(validPayment())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*model.ParsedPayment)
		wantErrPart string
	}{
		{
			name:        "zero amount",
			mutate:      func(p *model.ParsedPayment) { p.Amount = 0 },
			wantErrPart: "greater than zero",
		},
		{
			name:        "negative amount",
			mutate:      func(p *model.ParsedPayment) { p.Amount = -10 },
			wantErrPart: "greater than zero",
		},
		{
			name:        "amount above range",
			mutate:      func(p *model.ParsedPayment) { p.Amount = 150000 },
			wantErrPart: "outside the allowed range",
		},
		{
			name:        "amount below range",
			mutate:      func(p *model.ParsedPayment) { p.Amount = 0.5 },
			wantErrPart: "outside the allowed range",
		},
		{
			name:        "receiver mismatch",
			mutate:      func(p *model.ParsedPayment) { p.ReceiverID = "randomuser@otherbank" },
			wantErrPart: "expected merchant identity",
		},
		{
			name:        "stale timestamp",
			mutate:      func(p *model.ParsedPayment) { p.Timestamp = time.Now().Add(-2 * time.Hour) },
			wantErrPart: "stale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(DefaultConfig())
			payment := validPayment()
			tt.mutate(&payment)

			result := v.Validate(payment)
			require.False(t, result.IsValid)

			found := false
			for _, msg := range result.Errors {
				if strings.Contains(msg, tt.wantErrPart) {
					found = true
				}
			}
			assert.True(t, found, "expected an error containing %q, got %v", tt.wantErrPart, result.Errors)
		})
	}
}

func TestValidate_EmptyReceiverIsNotFlagged(t *testing.T) {
	v := New(DefaultConfig())
	payment := validPayment()
	payment.ReceiverID = ""

	result := v.Validate(payment)
	assert.True(t, result.IsValid, "receiver check only applies to non-empty receivers")
}

func TestValidate_ErrorsAccumulate(t *testing.T) {
	v := New(DefaultConfig())

	result := v.Validate(model.ParsedPayment{
		Amount:     -5,
		ReceiverID: "randomuser@otherbank",
		Timestamp:  time.Now().Add(-3 * time.Hour),
	})

	require.False(t, result.IsValid)
	// Non-positive, out of range, wrong receiver and stale, all at once.
	assert.Len(t, result.Errors, 4)
}

func TestValidate_IsPure(t *testing.T) {
	cfg := DefaultConfig()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := NewWithClock(cfg, func() time.Time { return fixed })

	payment := validPayment()
	payment.Timestamp = fixed.Add(-10 * time.Minute)

	first := v.Validate(payment)
	second := v.Validate(payment)
	assert.Equal(t, first, second)
}

func TestValidate_NeverPanicsOnZeroValue(t *testing.T) {
	v := New(DefaultConfig())

	assert.NotPanics(t, func() {
		result := v.Validate(model.ParsedPayment{})
		assert.False(t, result.IsValid)
	})
}

func TestErrorClassifiers(t *testing.T) {
	v := NewWithClock(DefaultConfig(), time.Now)

	payment := validPayment()
	payment.ReceiverID = "someone@else"
	payment.Timestamp = time.Now().Add(-2 * time.Hour)

	result := v.Validate(payment)
	require.Len(t, result.Errors, 2)
	assert.True(t, IsReceiverError(result.Errors[0]))
	assert.True(t, IsStalenessError(result.Errors[1]))
	assert.False(t, IsReceiverError(result.Errors[1]))
	assert.False(t, IsStalenessError(result.Errors[0]))
}
