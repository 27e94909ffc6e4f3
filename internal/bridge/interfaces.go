// Package bridge gives callers a live view of one order's payment status,
// through either push notifications or timed polling. Both mechanisms share
// one observable contract: OrderPaymentStatus snapshots delivered to a
// callback until the observation stops.
package bridge

import (
	"context"

	"github.com/hrejuh/upiwatch/internal/model"
)

// OrderReader returns the current state of one order. A single failed read
// is transient: observers log it and keep going.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

// Notifier emits change notifications scoped to a single order id. The
// returned cancel func releases the subscription. Delivery is at-least-once
// and rapid successive updates may coalesce; subscribers re-read the order
// so every snapshot is authoritative-as-of-now.
type Notifier interface {
	Subscribe(orderID string) (<-chan struct{}, func())
}

// SnapshotFunc receives each status snapshot. It is called from the
// observer's goroutine; never from two goroutines at once.
type SnapshotFunc func(model.OrderPaymentStatus)

// Outcome is the terminal state of an observation.
type Outcome string

// Observation outcomes.
const (
	// OutcomeRunning means the observation has not finished yet.
	OutcomeRunning Outcome = "running"
	// OutcomeConfirmed means polling saw PaymentConfirmed=true and stopped.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeExhausted means the attempt budget ran out before confirmation.
	// This is a distinct end state, not an error.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeCancelled means the caller stopped the observation.
	OutcomeCancelled Outcome = "cancelled"
)

// Handle controls a running observation. Stop is safe to call more than
// once and from any goroutine; it is returned synchronously so callers can
// cancel before the first tick fires.
type Handle interface {
	// Stop cancels the observation. In-flight reads complete but their
	// results are discarded.
	Stop()
	// Done is closed when delivery has permanently stopped.
	Done() <-chan struct{}
	// Result reports the terminal outcome. Valid once Done is closed;
	// before that it returns OutcomeRunning.
	Result() Outcome
}

// StatusObserver is the shared contract of the push and pull bridges. The
// choice between them is a constructor decision, not a structural fork.
type StatusObserver interface {
	Observe(ctx context.Context, orderID string, deliver SnapshotFunc) (Handle, error)
}
