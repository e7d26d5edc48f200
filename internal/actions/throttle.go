package actions

import (
	"sync"
	"time"
)

// Throttle admits at most one call per key within an interval.
type Throttle struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

// NewThrottle returns an empty throttle.
func NewThrottle() *Throttle {
	return &Throttle{last: make(map[string]time.Time), now: time.Now}
}

// Allow reports whether key may fire now and, if so, records the call.
func (t *Throttle) Allow(key string, interval time.Duration) bool {
	if interval <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if prev, ok := t.last[key]; ok && now.Sub(prev) < interval {
		return false
	}
	t.last[key] = now
	return true
}
