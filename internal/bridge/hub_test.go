package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishWakesOnlyMatchingOrder(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe("order-a")
	defer cancelA()
	b, cancelB := hub.Subscribe("order-b")
	defer cancelB()

	hub.Publish("order-a")

	select {
	case <-a:
	default:
		t.Fatal("subscriber for order-a should have a pending notification")
	}
	select {
	case <-b:
		t.Fatal("subscriber for order-b should not be notified")
	default:
	}
}

func TestHub_RapidPublishesCoalesce(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("order-1")
	defer cancel()

	hub.Publish("order-1")
	hub.Publish("order-1")
	hub.Publish("order-1")

	// One pending wakeup is enough; the rest are dropped, never blocked on.
	<-ch
	select {
	case <-ch:
		t.Fatal("successive publishes must coalesce into one pending notification")
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("order-1")

	cancel()
	_, ok := <-ch
	assert.False(t, ok, "cancel closes the subscription channel")

	// Cancel is idempotent and publish after cancel is a no-op.
	cancel()
	hub.Publish("order-1")
}

func TestHub_MultipleSubscribersSameOrder(t *testing.T) {
	hub := NewHub()
	first, cancelFirst := hub.Subscribe("order-1")
	second, cancelSecond := hub.Subscribe("order-1")
	defer cancelSecond()

	hub.Publish("order-1")

	require.Len(t, first, 1)
	require.Len(t, second, 1)

	// Dropping one subscriber leaves the other attached.
	cancelFirst()
	<-second
	hub.Publish("order-1")
	require.Len(t, second, 1)
}
