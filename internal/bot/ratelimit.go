package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UserRateLimiter manages rate limiters per user id, keeping one
// misbehaving user from hammering the calendar provider.
type UserRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*limiterEntry
	rate       rate.Limit
	burst      int
	cleanup    time.Duration
	maxEntries int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewUserRateLimiter creates a per-user rate limiter. cleanup is how often
// stale entries are dropped.
func NewUserRateLimiter(r rate.Limit, b int, cleanup time.Duration) *UserRateLimiter {
	l := &UserRateLimiter{
		limiters:   make(map[string]*limiterEntry),
		rate:       r,
		burst:      b,
		cleanup:    cleanup,
		maxEntries: 10000, // prevent unbounded growth
	}

	go l.cleanupStale()

	return l
}

// Allow reports whether the user may proceed now.
func (l *UserRateLimiter) Allow(userID string) bool {
	return l.getLimiter(userID).Allow()
}

func (l *UserRateLimiter) getLimiter(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.limiters[userID]
	if !exists {
		if len(l.limiters) >= l.maxEntries {
			l.evictOldest()
		}
		entry = &limiterEntry{
			limiter:    rate.NewLimiter(l.rate, l.burst),
			lastAccess: time.Now(),
		}
		l.limiters[userID] = entry
	} else {
		entry.lastAccess = time.Now()
	}

	return entry.limiter
}

func (l *UserRateLimiter) evictOldest() {
	var oldestID string
	var oldestTime time.Time

	for id, entry := range l.limiters {
		if oldestID == "" || entry.lastAccess.Before(oldestTime) {
			oldestID = id
			oldestTime = entry.lastAccess
		}
	}

	if oldestID != "" {
		delete(l.limiters, oldestID)
	}
}

func (l *UserRateLimiter) cleanupStale() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-l.cleanup * 2)
		for id, entry := range l.limiters {
			if entry.lastAccess.Before(cutoff) {
				delete(l.limiters, id)
			}
		}
		l.mu.Unlock()
	}
}
