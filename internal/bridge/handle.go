package bridge

import "sync"

// observation is the shared Handle implementation for both bridge modes.
type observation struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	outcome  Outcome
}

func newObservation() *observation {
	return &observation{
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		outcome: OutcomeRunning,
	}
}

func (o *observation) Stop() {
	o.stopOnce.Do(func() { close(o.stop) })
}

func (o *observation) Done() <-chan struct{} {
	return o.done
}

func (o *observation) Result() Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcome
}

// stopped reports whether cancellation has been requested.
func (o *observation) stopped() bool {
	select {
	case <-o.stop:
		return true
	default:
		return false
	}
}

// finish records the terminal outcome and closes Done.
func (o *observation) finish(outcome Outcome) {
	o.mu.Lock()
	o.outcome = outcome
	o.mu.Unlock()
	close(o.done)
}
