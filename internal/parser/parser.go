// Package parser extracts structured payment candidates from bank and
// wallet notification emails using the configured template registry.
package parser

import (
	"log/slog"
	"strings"

	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/template"
)

// Parser applies bank templates to raw emails, in priority order, producing
// a payment candidate or nothing. It is stateless per call and safe for
// concurrent use.
type Parser struct {
	registry         *template.Registry
	expectedReceiver string
}

// New creates a parser over the given registry. expectedReceiver is the
// merchant identity token used only for a diagnostic caution at parse time;
// enforcement belongs to the validator.
func New(registry *template.Registry, expectedReceiver string) *Parser {
	return &Parser{
		registry:         registry,
		expectedReceiver: expectedReceiver,
	}
}

// Parse tries each template against the email and returns the first payment
// candidate with a valid amount, or nil when no template matches. Extraction
// is deliberately permissive: a partially malformed email still produces an
// auditable candidate, and rejection is deferred to validation.
func (p *Parser) Parse(email model.EmailMessage) *model.ParsedPayment {
	searchText := email.Subject + "\n" + email.Body
	sender := strings.ToLower(email.FromAddress)

	for _, tmpl := range p.registry.Templates() {
		if tmpl.EmailDomainFilter != model.WildcardDomain &&
			!strings.Contains(sender, strings.ToLower(tmpl.EmailDomainFilter)) {
			continue
		}

		rawAmount, ok := extractField(tmpl.AmountPattern, searchText)
		if !ok {
			continue
		}
		amount, ok := parseAmount(rawAmount)
		if !ok {
			slog.Debug("Template matched but amount did not parse",
				"bank", tmpl.BankName, "raw", rawAmount)
			continue
		}

		payment := &model.ParsedPayment{
			BankName:  tmpl.BankName,
			Amount:    amount,
			Timestamp: email.ReceivedAt,
		}
		payment.UPIReference, _ = extractField(tmpl.ReferencePattern, searchText)
		payment.SenderID, _ = extractField(tmpl.SenderIDPattern, searchText)
		payment.ReceiverID, _ = extractField(tmpl.ReceiverIDPattern, searchText)
		if tmpl.TransactionIDPattern != "" {
			txnID, _ := extractField(tmpl.TransactionIDPattern, searchText)
			payment.TransactionID = &txnID
		}

		if p.expectedReceiver != "" && payment.ReceiverID != "" &&
			!strings.Contains(strings.ToLower(payment.ReceiverID), strings.ToLower(p.expectedReceiver)) {
			slog.Warn("Receiver identity does not match expected merchant",
				"bank", tmpl.BankName,
				"receiver", payment.ReceiverID,
				"expected", p.expectedReceiver)
		}

		slog.Debug("Parsed payment candidate",
			"bank", tmpl.BankName,
			"amount", amount,
			"reference", payment.UPIReference)
		return payment
	}

	return nil
}
