package middleware

import (
	"fmt"
	"sync"
	"time"

	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// Limiter decides whether a request identified by key may proceed. The
// contract is the interface; the in-memory implementation below covers
// single-instance deployments, a shared store can be swapped in behind
// the same interface for multi-instance ones.
type Limiter interface {
	Allow(key string) (ok bool, remaining int, retryAfter time.Duration)
}

type windowEntry struct {
	count     int
	resetTime time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory.
// Known limitation: counters are per instance, so limits are
// best-effort when running multiple replicas.
type MemoryLimiter struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	entries map[string]*windowEntry

	stop     chan struct{}
	stopOnce sync.Once
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		maxRequests: maxRequests,
		window:      window,
		entries:     make(map[string]*windowEntry),
		stop:        make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Stop ends the sweep goroutine. Counting keeps working afterwards, the
// map just stops being pruned. Safe to call more than once.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) Allow(key string) (bool, int, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetTime) {
		l.entries[key] = &windowEntry{count: 1, resetTime: now.Add(l.window)}
		return true, l.maxRequests - 1, l.window
	}

	if entry.count >= l.maxRequests {
		return false, 0, time.Until(entry.resetTime)
	}

	entry.count++
	return true, l.maxRequests - entry.count, time.Until(entry.resetTime)
}

// sweep drops expired windows once a minute so the map does not grow
// with one entry per client IP forever.
func (l *MemoryLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for key, entry := range l.entries {
				if now.After(entry.resetTime) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// RateLimitMiddleware applies the limiter keyed by client IP.
func RateLimitMiddleware(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, _, retryAfter := limiter.Allow(c.IP())
		if !ok {
			seconds := int(retryAfter.Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", seconds))
			return utils.TooManyRequests(c, "Too many requests, try again later")
		}
		return c.Next()
	}
}
