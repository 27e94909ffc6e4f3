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

// scriptReader answers GetOrder from a per-call script.
type scriptReader struct {
	fn    func(call int) (*model.Order, error)
	mu    sync.Mutex
	calls int
}

func (r *scriptReader) GetOrder(_ context.Context, _ string) (*model.Order, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.mu.Unlock()
	return r.fn(call)
}

func (r *scriptReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func pendingOrder() *model.Order {
	return &model.Order{ID: "order-1", Status: model.OrderPending, Amount: 100}
}

func paidOrder() *model.Order {
	return &model.Order{
		ID:                    "order-1",
		Status:                model.OrderPaid,
		Amount:                100,
		PaymentVerificationID: "ver-1",
		PaymentConfirmed:      true,
		AutoVerified:          true,
	}
}

// collector records delivered snapshots.
type collector struct {
	mu        sync.Mutex
	snapshots []model.OrderPaymentStatus
}

func (c *collector) deliver(s model.OrderPaymentStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, s)
}

func (c *collector) all() []model.OrderPaymentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.OrderPaymentStatus(nil), c.snapshots...)
}

func waitDone(t *testing.T, h Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("observation did not finish in time")
	}
}

func TestPoller_StopsOnConfirmation(t *testing.T) {
	reader := &scriptReader{fn: func(call int) (*model.Order, error) {
		if call < 3 {
			return pendingOrder(), nil
		}
		return paidOrder(), nil
	}}
	poller := NewPoller(reader, PollerConfig{Interval: time.Millisecond, MaxAttempts: 150})

	var got collector
	handle, err := poller.Observe(context.Background(), "order-1", got.deliver)
	require.NoError(t, err)
	waitDone(t, handle)

	assert.Equal(t, OutcomeConfirmed, handle.Result())
	assert.Equal(t, 3, reader.callCount(), "polling must stop at the confirming read")

	snapshots := got.all()
	require.Len(t, snapshots, 3)
	assert.False(t, snapshots[0].PaymentConfirmed)
	assert.False(t, snapshots[1].PaymentConfirmed)
	assert.True(t, snapshots[2].PaymentConfirmed)
	assert.Equal(t, "ver-1", snapshots[2].VerificationID)
}

func TestPoller_ExhaustsAttemptBudget(t *testing.T) {
	reader := &scriptReader{fn: func(int) (*model.Order, error) {
		return pendingOrder(), nil
	}}
	poller := NewPoller(reader, PollerConfig{Interval: time.Millisecond, MaxAttempts: 5})

	var got collector
	handle, err := poller.Observe(context.Background(), "order-1", got.deliver)
	require.NoError(t, err)
	waitDone(t, handle)

	assert.Equal(t, OutcomeExhausted, handle.Result())
	assert.Equal(t, 5, reader.callCount(), "exactly the budget, no extra read")
	snapshots := got.all()
	require.Len(t, snapshots, 5)
	assert.False(t, snapshots[4].PaymentConfirmed)
}

func TestPoller_TransientErrorsConsumeAttemptsButContinue(t *testing.T) {
	reader := &scriptReader{fn: func(call int) (*model.Order, error) {
		if call == 1 {
			return nil, errors.New("db locked")
		}
		return paidOrder(), nil
	}}
	poller := NewPoller(reader, PollerConfig{Interval: time.Millisecond, MaxAttempts: 150})

	var got collector
	handle, err := poller.Observe(context.Background(), "order-1", got.deliver)
	require.NoError(t, err)
	waitDone(t, handle)

	assert.Equal(t, OutcomeConfirmed, handle.Result())
	assert.Equal(t, 2, reader.callCount())
	assert.Len(t, got.all(), 1, "failed reads deliver nothing")
}

func TestPoller_StopCancelsBetweenTicks(t *testing.T) {
	reader := &scriptReader{fn: func(int) (*model.Order, error) {
		return pendingOrder(), nil
	}}
	poller := NewPoller(reader, PollerConfig{Interval: time.Hour, MaxAttempts: 150})

	var got collector
	handle, err := poller.Observe(context.Background(), "order-1", got.deliver)
	require.NoError(t, err)

	// Let the first read land, then cancel while the poller sleeps.
	assert.Eventually(t, func() bool { return len(got.all()) == 1 },
		5*time.Second, time.Millisecond)
	handle.Stop()
	waitDone(t, handle)

	assert.Equal(t, OutcomeCancelled, handle.Result())
	assert.Equal(t, 1, reader.callCount())
}

func TestPoller_StopDiscardsInFlightRead(t *testing.T) {
	gate := make(chan struct{})
	reader := &scriptReader{fn: func(int) (*model.Order, error) {
		<-gate
		return paidOrder(), nil
	}}
	poller := NewPoller(reader, DefaultPollerConfig())

	var got collector
	handle, err := poller.Observe(context.Background(), "order-1", got.deliver)
	require.NoError(t, err)

	handle.Stop()
	close(gate)
	waitDone(t, handle)

	assert.Equal(t, OutcomeCancelled, handle.Result())
	assert.Empty(t, got.all(), "a read that raced Stop must not be delivered")
}

func TestPoller_ContextCancellation(t *testing.T) {
	reader := &scriptReader{fn: func(int) (*model.Order, error) {
		return pendingOrder(), nil
	}}
	poller := NewPoller(reader, PollerConfig{Interval: time.Hour, MaxAttempts: 150})

	ctx, cancel := context.WithCancel(context.Background())
	var got collector
	handle, err := poller.Observe(ctx, "order-1", got.deliver)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(got.all()) == 1 },
		5*time.Second, time.Millisecond)
	cancel()
	waitDone(t, handle)

	assert.Equal(t, OutcomeCancelled, handle.Result())
}

func TestNewPoller_AppliesDefaultsToZeroConfig(t *testing.T) {
	poller := NewPoller(&scriptReader{}, PollerConfig{})
	assert.Equal(t, DefaultPollerConfig().Interval, poller.config.Interval)
	assert.Equal(t, DefaultPollerConfig().MaxAttempts, poller.config.MaxAttempts)
}

func TestHandle_ResultBeforeDoneIsRunning(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	reader := &scriptReader{fn: func(int) (*model.Order, error) {
		<-gate
		return paidOrder(), nil
	}}
	poller := NewPoller(reader, DefaultPollerConfig())

	handle, err := poller.Observe(context.Background(), "order-1", func(model.OrderPaymentStatus) {})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRunning, handle.Result())
	handle.Stop()
}
