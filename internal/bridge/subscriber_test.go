package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrejuh/upiwatch/internal/model"
)

// stateReader serves whatever order it currently holds.
type stateReader struct {
	mu    sync.Mutex
	order *model.Order
	err   error
}

func (r *stateReader) GetOrder(_ context.Context, _ string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	copied := *r.order
	return &copied, nil
}

func (r *stateReader) set(order *model.Order, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = order
	r.err = err
}

func TestSubscriber_InitialSnapshotThenPerNotification(t *testing.T) {
	reader := &stateReader{order: pendingOrder()}
	hub := NewHub()
	sub := NewSubscriber(reader, hub)

	var got collector
	handle, err := sub.Observe(context.Background(), "order-1", got.deliver)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(got.all()) == 1 },
		5*time.Second, time.Millisecond)
	assert.False(t, got.all()[0].PaymentConfirmed)

	// The notification carries no payload; the snapshot comes from a fresh
	// read of the stored row.
	reader.set(paidOrder(), nil)
	hub.Publish("order-1")

	assert.Eventually(t, func() bool { return len(got.all()) == 2 },
		5*time.Second, time.Millisecond)
	second := got.all()[1]
	assert.True(t, second.PaymentConfirmed)
	assert.Equal(t, model.OrderPaid, second.Status)
	assert.Equal(t, "ver-1", second.VerificationID)

	handle.Stop()
	waitDone(t, handle)
	assert.Equal(t, OutcomeCancelled, handle.Result())
}

func TestSubscriber_ReadFailureDoesNotTerminate(t *testing.T) {
	reader := &stateReader{err: errors.New("db locked")}
	hub := NewHub()
	sub := NewSubscriber(reader, hub)

	var got collector
	handle, err := sub.Observe(context.Background(), "order-1", got.deliver)
	require.NoError(t, err)

	// Initial read fails silently; a later notification after recovery
	// still delivers.
	reader.set(paidOrder(), nil)
	hub.Publish("order-1")

	assert.Eventually(t, func() bool { return len(got.all()) >= 1 },
		5*time.Second, time.Millisecond)
	assert.True(t, got.all()[0].PaymentConfirmed)

	handle.Stop()
	waitDone(t, handle)
}

func TestSubscriber_StopReleasesSubscription(t *testing.T) {
	reader := &stateReader{order: pendingOrder()}
	hub := NewHub()
	sub := NewSubscriber(reader, hub)

	handle, err := sub.Observe(context.Background(), "order-1", func(model.OrderPaymentStatus) {})
	require.NoError(t, err)

	handle.Stop()
	waitDone(t, handle)
	assert.Equal(t, OutcomeCancelled, handle.Result())

	// Publishing after teardown must not panic or deliver anywhere.
	hub.Publish("order-1")
}

func TestSubscriber_ContextCancellation(t *testing.T) {
	reader := &stateReader{order: pendingOrder()}
	hub := NewHub()
	sub := NewSubscriber(reader, hub)

	ctx, cancel := context.WithCancel(context.Background())
	var got collector
	handle, err := sub.Observe(ctx, "order-1", got.deliver)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(got.all()) == 1 },
		5*time.Second, time.Millisecond)
	cancel()
	waitDone(t, handle)
	assert.Equal(t, OutcomeCancelled, handle.Result())
}
