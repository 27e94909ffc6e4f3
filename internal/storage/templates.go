package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrejuh/upiwatch/internal/model"
)

// GetBankTemplates returns all persisted bank templates. Order does not
// matter here; the registry sorts by priority at load time.
func (s *SQLiteStorage) GetBankTemplates(ctx context.Context) ([]model.BankTemplate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT bank_name, email_domain_filter, subject_pattern, amount_pattern,
			reference_pattern, sender_id_pattern, receiver_id_pattern,
			transaction_id_pattern, priority
		FROM bank_templates
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank templates: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var templates []model.BankTemplate
	for rows.Next() {
		var t model.BankTemplate
		if err := rows.Scan(
			&t.BankName, &t.EmailDomainFilter, &t.SubjectPattern, &t.AmountPattern,
			&t.ReferencePattern, &t.SenderIDPattern, &t.ReceiverIDPattern,
			&t.TransactionIDPattern, &t.Priority,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bank template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bank templates: %w", err)
	}

	return templates, nil
}

// SaveBankTemplates replaces the persisted template set wholesale inside a
// single transaction. Templates are never patched in place.
func (s *SQLiteStorage) SaveBankTemplates(ctx context.Context, templates []model.BankTemplate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range templates {
		if err := templates[i].Validate(); err != nil {
			return fmt.Errorf("template %q: %w", templates[i].BankName, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bank_templates`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear bank templates: %w", err)
	}

	for _, t := range templates {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bank_templates (
				bank_name, email_domain_filter, subject_pattern, amount_pattern,
				reference_pattern, sender_id_pattern, receiver_id_pattern,
				transaction_id_pattern, priority
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.BankName, t.EmailDomainFilter, t.SubjectPattern, t.AmountPattern,
			t.ReferencePattern, t.SenderIDPattern, t.ReceiverIDPattern,
			t.TransactionIDPattern, t.Priority,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert template %q: %w", t.BankName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit templates: %w", err)
	}

	slog.Info("Replaced bank templates", "count", len(templates))
	return nil
}
