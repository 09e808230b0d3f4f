package apiclient

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestThrottleFIFOOrder(t *testing.T) {
	th := newThrottle(1)
	if err := th.acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	const waiters = 5
	var mu sync.Mutex
	var admitted []int
	started := make(chan struct{}, waiters)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			started <- struct{}{}
			if err := th.acquire(context.Background()); err != nil {
				t.Errorf("waiter %d: %v", id, err)
				return
			}
			mu.Lock()
			admitted = append(admitted, id)
			mu.Unlock()
			<-done
			th.release()
		}(i)
		// Serialize enqueue order so FIFO expectations are deterministic.
		<-started
		time.Sleep(5 * time.Millisecond)
	}

	close(done)
	th.release()
	wg.Wait()

	for i, id := range admitted {
		if id != i {
			t.Fatalf("expected FIFO admission order, got %v", admitted)
		}
	}
}

func TestThrottleAcquireCanceledWhileWaiting(t *testing.T) {
	th := newThrottle(1)
	if err := th.acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := th.acquire(ctx); err == nil {
		t.Fatal("expected context error while waiting")
	}

	// The canceled waiter must not consume the slot released later.
	th.release()
	if err := th.acquire(context.Background()); err != nil {
		t.Fatalf("slot lost after canceled waiter: %v", err)
	}
	th.release()
	if got := th.inFlight(); got != 0 {
		t.Errorf("expected 0 in flight, got %d", got)
	}
}
