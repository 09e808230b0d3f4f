package apiclient

import (
	"context"
	"sync"
)

// throttle bounds the number of in-flight requests. Waiters are admitted in
// strict FIFO order; a completed request releases exactly one slot or hands
// it directly to the oldest waiter.
type throttle struct {
	mu      sync.Mutex
	limit   int
	active  int
	waiters []chan struct{}
}

func newThrottle(limit int) *throttle {
	if limit < 1 {
		limit = 1
	}
	return &throttle{limit: limit}
}

// acquire blocks until a slot is free or the context expires.
func (t *throttle) acquire(ctx context.Context) error {
	t.mu.Lock()
	if t.active < t.limit {
		t.active++
		t.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	t.waiters = append(t.waiters, ready)
	t.mu.Unlock()

	select {
	case <-ready:
		// Slot was handed over by release; active count already holds it.
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		for i, w := range t.waiters {
			if w == ready {
				t.waiters = append(t.waiters[:i], t.waiters[i+1:]...)
				t.mu.Unlock()
				return ctx.Err()
			}
		}
		t.mu.Unlock()
		// A slot was granted between ctx.Done and taking the lock; give it back.
		t.release()
		return ctx.Err()
	}
}

// release frees one slot, waking the oldest waiter if any. Must be called
// exactly once per successful acquire, on every exit path.
func (t *throttle) release() {
	t.mu.Lock()
	if len(t.waiters) > 0 {
		ready := t.waiters[0]
		t.waiters = t.waiters[1:]
		t.mu.Unlock()
		close(ready)
		return
	}
	t.active--
	t.mu.Unlock()
}

// inFlight returns the current number of admitted requests.
func (t *throttle) inFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
