package folio

import (
	"sync"
	"time"
)

// RateLimiter limits actions per key (usually a client IP) to max within a
// sliding window.
type RateLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	max     int
	window  time.Duration
	stop    chan struct{}
	stopped sync.Once
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter that allows max actions per window.
// Call Stop to release its cleanup goroutine.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		stop:   make(chan struct{}),
		now:    time.Now,
	}
	go l.cleanup()
	return l
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

func (l *RateLimiter) prune() {
	cutoff := l.now().Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, hits := range l.hits {
		kept := recent(hits, cutoff)
		if len(kept) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = kept
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *RateLimiter) Stop() {
	l.stopped.Do(func() { close(l.stop) })
}

// Allow reports whether key is under the limit and, if so, records the
// action.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := recent(l.hits[key], now.Add(-l.window))
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

func recent(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
