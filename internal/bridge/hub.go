package bridge

import "sync"

// Hub is an in-process Notifier. The storage layer publishes an order id on
// every mutation; subscribers scoped to that id get woken up. Channels are
// buffered with depth one, so rapid successive updates coalesce rather than
// block the publisher.
type Hub struct {
	subs   map[string]map[int]chan struct{}
	mu     sync.Mutex
	nextID int
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers for change notifications on one order id. The cancel
// func releases the subscription and closes the channel.
func (h *Hub) Subscribe(orderID string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[int]chan struct{})
	}
	id := h.nextID
	h.nextID++

	ch := make(chan struct{}, 1)
	h.subs[orderID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[orderID][id]; ok {
			delete(h.subs[orderID], id)
			if len(h.subs[orderID]) == 0 {
				delete(h.subs, orderID)
			}
			close(sub)
		}
	}
	return ch, cancel
}

// Publish notifies all subscribers of the order. Never blocks: a subscriber
// that already has a pending notification is skipped, since one wakeup is
// enough to trigger a fresh read.
func (h *Hub) Publish(orderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[orderID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
