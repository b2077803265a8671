// Package limiter caps the number of upstream operations in flight at once.
package limiter

import "sync"

// Limiter admits at most max tasks concurrently. Callers beyond the limit
// queue in arrival order and start as running tasks finish. A task's failure
// is its own: it is returned to that caller and never affects queued tasks.
type Limiter struct {
	mu      sync.Mutex
	max     int
	running int
	waiters []chan struct{}
}

// New returns a limiter admitting up to max concurrent tasks. max must be
// at least 1.
func New(max int) *Limiter {
	if max < 1 {
		max = 1
	}
	return &Limiter{max: max}
}

// Do runs fn once a slot is free and returns its error. There is no timeout
// on the queue wait; callers that need one wrap fn's work in a context.
func (l *Limiter) Do(fn func() error) error {
	l.acquire()
	defer l.release()
	return fn()
}

func (l *Limiter) acquire() {
	l.mu.Lock()
	if l.running < l.max {
		l.running++
		l.mu.Unlock()
		return
	}
	ready := make(chan struct{})
	l.waiters = append(l.waiters, ready)
	l.mu.Unlock()
	<-ready
}

func (l *Limiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.waiters) > 0 {
		// Hand the slot straight to the oldest waiter; running stays put.
		ready := l.waiters[0]
		l.waiters = l.waiters[1:]
		close(ready)
		return
	}
	l.running--
}
