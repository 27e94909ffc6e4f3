package model

import "time"

// ParsedPayment is the structured payment candidate extracted from a
// confirmation email. Amount is always positive; the optional fields
// default to empty strings when their pattern was unset or unmatched.
// TransactionID is nil when the winning template carries no pattern for it.
type ParsedPayment struct {
	Timestamp     time.Time
	TransactionID *string
	BankName      string
	UPIReference  string
	SenderID      string
	ReceiverID    string
	Amount        float64
}

// ValidationResult reports the outcome of checking a ParsedPayment against
// the business rules. IsValid is true iff Errors is empty.
type ValidationResult struct {
	Errors  []string
	IsValid bool
}
