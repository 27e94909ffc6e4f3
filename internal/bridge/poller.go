package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrejuh/upiwatch/internal/model"
)

// PollerConfig holds the pull-mode tuning knobs.
type PollerConfig struct {
	// Interval between reads. One read is in flight at a time; a slow read
	// simply delays the next tick.
	Interval time.Duration
	// MaxAttempts bounds the total number of reads per observation.
	MaxAttempts int
}

// DefaultPollerConfig returns the reference settings: a read every 2
// seconds, 150 attempts, roughly five minutes of watching.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:    2 * time.Second,
		MaxAttempts: 150,
	}
}

// Poller is the pull-mode status bridge. Each Observe call runs an
// independent polling loop; concurrent observations share no timers or
// state.
type Poller struct {
	reader OrderReader
	config PollerConfig
}

// NewPoller creates a pull-mode bridge over the given reader.
func NewPoller(reader OrderReader, config PollerConfig) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultPollerConfig().MaxAttempts
	}
	return &Poller{reader: reader, config: config}
}

// Observe polls the order until it is confirmed, the attempt budget runs
// out, or the returned handle is stopped. A snapshot is delivered on every
// successful read; transient read failures are logged and still consume an
// attempt.
func (p *Poller) Observe(ctx context.Context, orderID string, deliver SnapshotFunc) (Handle, error) {
	obs := newObservation()

	go func() {
		for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
			order, err := p.reader.GetOrder(ctx, orderID)

			// A stop that raced the read wins: discard the result.
			if obs.stopped() {
				obs.finish(OutcomeCancelled)
				return
			}

			if err != nil {
				slog.Warn("Order poll failed, continuing",
					"order_id", orderID,
					"attempt", attempt,
					"error", err)
			} else {
				snapshot := model.SnapshotFromOrder(order)
				deliver(snapshot)
				if snapshot.PaymentConfirmed {
					obs.finish(OutcomeConfirmed)
					return
				}
			}

			if attempt == p.config.MaxAttempts {
				break
			}

			select {
			case <-obs.stop:
				obs.finish(OutcomeCancelled)
				return
			case <-ctx.Done():
				obs.finish(OutcomeCancelled)
				return
			case <-time.After(p.config.Interval):
			}
		}

		slog.Info("Order poll budget exhausted without confirmation",
			"order_id", orderID,
			"attempts", p.config.MaxAttempts)
		obs.finish(OutcomeExhausted)
	}()

	return obs, nil
}
