package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// minLimiterIdle is the shortest time a limiter is kept after its last use.
const minLimiterIdle = 10 * time.Minute

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterPool hands out one token bucket per key. Buckets idle longer than idle are dropped;
// idle is never shorter than a full refill, so an evicted bucket would have been full anyway.
type limiterPool struct {
	mu        sync.Mutex
	m         map[string]*limiterEntry
	rps       float64
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	idle := time.Duration(float64(burst) / rps * float64(time.Second))
	if idle < minLimiterIdle {
		idle = minLimiterIdle
	}
	return &limiterPool{
		m:     make(map[string]*limiterEntry),
		rps:   rps,
		burst: burst,
		idle:  idle,
		now:   time.Now,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastSweep) >= p.idle {
		p.sweep(now)
	}
	if e, ok := p.m[key]; ok {
		e.seen = now
		return e.lim
	}
	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.m[key] = &limiterEntry{lim: l, seen: now}
	return l
}

func (p *limiterPool) sweep(now time.Time) {
	for k, e := range p.m {
		if now.Sub(e.seen) >= p.idle {
			delete(p.m, k)
		}
	}
	p.lastSweep = now
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// RateLimit throttles requests per authenticated owner, falling back to the client IP.
// It must run after Auth. Rejected requests get 429 with Retry-After.
func RateLimit(rps float64, burst int) fiber.Handler {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 5
	}
	pool := newLimiterPool(rps, burst)
	retryAfter := strconv.Itoa(int(math.Ceil(1 / rps)))

	return func(c *fiber.Ctx) error {
		key := OwnerID(c)
		if key == "" {
			key = "ip:" + c.IP()
		}
		if !pool.get(key).Allow() {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
