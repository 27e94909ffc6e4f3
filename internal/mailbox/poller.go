package mailbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/engine"
	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/service"
)

// PollerConfig tunes the mailbox polling loop.
type PollerConfig struct {
	// Interval between mailbox sweeps.
	Interval time.Duration
	// BatchSize bounds how many messages one sweep fetches.
	BatchSize int64
}

// DefaultPollerConfig returns the reference settings.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:  30 * time.Second,
		BatchSize: 25,
	}
}

// Poller sweeps the mailbox on an interval and feeds every new email to the
// verifier. A failed sweep is logged and retried on the next tick; the loop
// only ends when the context does.
type Poller struct {
	client   *Client
	verifier *engine.Verifier
	config   PollerConfig
}

// NewPoller creates a mailbox poller.
func NewPoller(client *Client, verifier *engine.Verifier, config PollerConfig) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultPollerConfig().BatchSize
	}
	return &Poller{client: client, verifier: verifier, config: config}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("Mailbox poller started",
		"interval", p.config.Interval,
		"batch_size", p.config.BatchSize)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		p.sweep(ctx)

		select {
		case <-ctx.Done():
			slog.Info("Mailbox poller stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// sweep fetches one batch and processes each email.
func (p *Poller) sweep(ctx context.Context) {
	var emails []model.EmailMessage
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		emails, fetchErr = p.client.FetchUnread(ctx, p.config.BatchSize)
		return fetchErr
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		slog.Warn("Mailbox sweep failed, will retry next tick", "error", err)
		return
	}

	for _, email := range emails {
		p.processOne(ctx, email)
	}
}

func (p *Poller) processOne(ctx context.Context, email model.EmailMessage) {
	outcome, err := p.verifier.ProcessEmail(ctx, email)
	switch {
	case errors.Is(err, engine.ErrNoTemplateMatched):
		slog.Info("Email left for manual review", "email_id", email.ID)
	case err != nil:
		common.LogError(err, "Failed to process email", common.Fields{"email_id": email.ID})
		return // leave unread so the next sweep retries it
	default:
		slog.Info("Processed payment email",
			"email_id", email.ID,
			"verification_id", outcome.Record.ID,
			"status", outcome.Record.Status)
	}

	if err := p.client.MarkProcessed(ctx, email.ID); err != nil {
		slog.Warn("Failed to mark email processed", "email_id", email.ID, "error", err)
	}
}
