package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig sizes the per-key token buckets.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int

	// IdleTTL drops buckets unused for this long. Defaults to a minute.
	IdleTTL time.Duration

	// KeyFunc picks the bucket. Defaults to GetClientIP.
	KeyFunc func(r *http.Request) string
}

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

// RateLimiter answers 429 with Retry-After once a key's bucket is empty.
type RateLimiter struct {
	cfg     RateLimiterConfig
	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
	stop    sync.Once
}

// NewRateLimiter starts a janitor goroutine; call Stop to end it.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = GetClientIP
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = time.Minute
	}
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}

	rl := &RateLimiter{cfg: cfg, buckets: make(map[string]*bucket), done: make(chan struct{})}
	go rl.janitor()
	return rl
}

// reserve takes a token for key. When none is available it returns false
// and how long until one would be.
func (rl *RateLimiter) reserve(key string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.BurstSize)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	if b.AllowN(now, 1) {
		return true, 0
	}
	if rl.cfg.RequestsPerSecond <= 0 {
		return false, time.Minute
	}
	return false, time.Duration(float64(time.Second) / rl.cfg.RequestsPerSecond)
}

func (rl *RateLimiter) janitor() {
	t := time.NewTicker(rl.cfg.IdleTTL)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-t.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.lastSeen) > rl.cfg.IdleTTL {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, wait := rl.reserve(rl.cfg.KeyFunc(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			respondTooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
