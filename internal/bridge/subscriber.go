package bridge

import (
	"context"
	"log/slog"

	"github.com/hrejuh/upiwatch/internal/model"
)

// Subscriber is the push-mode status bridge. It suspends on an order-scoped
// notification stream and re-reads the order on every notification, so each
// delivered snapshot reflects the row as stored, not the notification
// payload.
type Subscriber struct {
	reader   OrderReader
	notifier Notifier
}

// NewSubscriber creates a push-mode bridge over the given reader and
// notification source.
func NewSubscriber(reader OrderReader, notifier Notifier) *Subscriber {
	return &Subscriber{reader: reader, notifier: notifier}
}

// Observe delivers an initial snapshot, then one per change notification,
// until the handle is stopped or the context ends. A failed read or a
// single dropped notification does not terminate the observation.
func (s *Subscriber) Observe(ctx context.Context, orderID string, deliver SnapshotFunc) (Handle, error) {
	obs := newObservation()
	changes, cancel := s.notifier.Subscribe(orderID)

	readAndDeliver := func() {
		order, err := s.reader.GetOrder(ctx, orderID)
		if obs.stopped() {
			return
		}
		if err != nil {
			slog.Warn("Order read failed on notification, continuing",
				"order_id", orderID,
				"error", err)
			return
		}
		deliver(model.SnapshotFromOrder(order))
	}

	go func() {
		defer cancel()

		readAndDeliver()
		if obs.stopped() {
			obs.finish(OutcomeCancelled)
			return
		}

		for {
			select {
			case <-obs.stop:
				obs.finish(OutcomeCancelled)
				return
			case <-ctx.Done():
				obs.finish(OutcomeCancelled)
				return
			case _, ok := <-changes:
				if !ok {
					obs.finish(OutcomeCancelled)
					return
				}
				readAndDeliver()
			}
		}
	}()

	return obs, nil
}
