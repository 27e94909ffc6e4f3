package model

import (
	"fmt"
	"regexp"
)

// WildcardDomain matches any sender address when used as EmailDomainFilter.
const WildcardDomain = "*"

// BankTemplate describes how one payment provider's confirmation emails
// encode amount, reference and identity fields. Templates are immutable
// configuration; the registry replaces them wholesale, never patches them.
type BankTemplate struct {
	BankName             string
	EmailDomainFilter    string // substring of the sender address, or "*"
	SubjectPattern       string // informational hint only
	AmountPattern        string
	ReferencePattern     string
	SenderIDPattern      string
	ReceiverIDPattern    string
	TransactionIDPattern string
	Priority             int // higher values are tried first
}

// Validate ensures the template has valid data before it enters the registry.
func (t *BankTemplate) Validate() error {
	if t.BankName == "" {
		return fmt.Errorf("bank name is required")
	}
	if t.EmailDomainFilter == "" {
		return fmt.Errorf("email domain filter is required (use %q to match any sender)", WildcardDomain)
	}
	if t.AmountPattern == "" {
		return fmt.Errorf("amount pattern is required")
	}
	if _, err := regexp.Compile(t.AmountPattern); err != nil {
		return fmt.Errorf("invalid amount pattern: %w", err)
	}
	return nil
}
