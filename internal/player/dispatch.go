package player

import "sync"

// serialQueue delivers callbacks one at a time in enqueue order. Whichever
// goroutine finds the queue idle drains it; re-entrant or concurrent posts are
// appended and picked up by the active drainer.
type serialQueue struct {
	mu       sync.Mutex
	pending  []func()
	draining bool
}

// push appends fn without running it. Callers hold their own state lock while
// pushing so that delivery order matches mutation order.
func (q *serialQueue) push(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// drain runs pending callbacks unless another goroutine is already doing so.
// It must be called without holding any lock that callbacks may need.
func (q *serialQueue) drain() {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true
	for len(q.pending) > 0 {
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()
		fn()
		q.mu.Lock()
	}
	q.draining = false
	q.mu.Unlock()
}
