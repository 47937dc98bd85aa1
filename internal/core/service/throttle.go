package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// throttleIdleAfter is how long a key may sit unused before its
	// limiter is eligible for eviction.
	throttleIdleAfter = 15 * time.Minute
	// throttleMaxEntries caps the limiter map. The user keys arriving
	// here are attacker-supplied (no existence check has run yet), so the
	// map must stay bounded regardless of input volume.
	throttleMaxEntries = 10000
)

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// LoginThrottle rate-limits authentication attempts per user key so a single
// account cannot be brute-forced at line speed. Limiters are created on
// first sight of a key; idle entries are swept once the map fills, and when
// every entry is live the least-recently-seen one is evicted, so the map
// never exceeds its cap.
type LoginThrottle struct {
	limit      rate.Limit
	burst      int
	idleAfter  time.Duration
	maxEntries int
	now        func() time.Time

	mu       sync.Mutex
	limiters map[string]*throttleEntry
}

// NewLoginThrottle allows attemptsPerMinute sustained attempts per key with
// a burst of burst.
func NewLoginThrottle(attemptsPerMinute float64, burst int) *LoginThrottle {
	return &LoginThrottle{
		limit:      rate.Limit(attemptsPerMinute / 60),
		burst:      burst,
		idleAfter:  throttleIdleAfter,
		maxEntries: throttleMaxEntries,
		now:        time.Now,
		limiters:   make(map[string]*throttleEntry),
	}
}

// Allow reports whether another attempt for userKey may proceed now.
func (lt *LoginThrottle) Allow(userKey string) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	entry, ok := lt.limiters[userKey]
	if !ok {
		if len(lt.limiters) >= lt.maxEntries {
			lt.evict(now)
		}
		entry = &throttleEntry{lim: rate.NewLimiter(lt.limit, lt.burst)}
		lt.limiters[userKey] = entry
	}
	entry.lastSeen = now
	return entry.lim.AllowN(now, 1)
}

// evict drops every idle entry, and when none is idle, the single
// least-recently-seen one. Called with the lock held.
func (lt *LoginThrottle) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for key, entry := range lt.limiters {
		if now.Sub(entry.lastSeen) >= lt.idleAfter {
			delete(lt.limiters, key)
			continue
		}
		if oldestKey == "" || entry.lastSeen.Before(oldest) {
			oldestKey, oldest = key, entry.lastSeen
		}
	}
	if len(lt.limiters) >= lt.maxEntries && oldestKey != "" {
		delete(lt.limiters, oldestKey)
	}
}
