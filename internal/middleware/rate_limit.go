package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Per-address token bucket defaults and sweep timing
const (
	DefaultRateLimit = 300 // requests per minute
	DefaultBurstSize = 30
	CleanupInterval  = 5 * time.Minute
	LimiterTTL       = 10 * time.Minute
)

// Quota describes a client's bucket right after a request was counted
type Quota struct {
	Limit      int
	Remaining  int
	Reset      time.Time     // when the bucket is full again
	RetryAfter time.Duration // zero for admitted requests
}

// RateLimiter keeps one token bucket per client address
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perMinute int
	refill    rate.Limit
	burst     int
	done      chan struct{}
	stopOnce  sync.Once
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter uses DefaultRateLimit and DefaultBurstSize
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

// NewRateLimiterWithConfig starts a limiter and its idle-bucket sweeper. Call Stop when done.
func NewRateLimiterWithConfig(requestsPerMinute int, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		buckets:   make(map[string]*bucket),
		perMinute: requestsPerMinute,
		refill:    rate.Limit(float64(requestsPerMinute) / 60),
		burst:     burstSize,
		done:      make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow counts one request for client and reports whether it is admitted
func (r *RateLimiter) Allow(client string) bool {
	ok, _ := r.Take(client)
	return ok
}

// Take counts one request for client and returns the resulting quota.
// Admission and the quota come from the same instant, so headers never disagree with the decision.
func (r *RateLimiter) Take(client string) (bool, Quota) {
	now := time.Now()

	r.mu.Lock()
	b, ok := r.buckets[client]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(r.refill, r.burst)}
		r.buckets[client] = b
	}
	b.lastSeen = now
	admitted := b.tokens.AllowN(now, 1)
	left := b.tokens.TokensAt(now)
	r.mu.Unlock()

	q := Quota{
		Limit:     r.perMinute,
		Remaining: max(int(left), 0),
		Reset:     now.Add(r.refillTime(float64(r.burst) - left)),
	}
	if !admitted {
		q.Remaining = 0
		q.RetryAfter = max(r.refillTime(1-left), time.Second)
	}
	return admitted, q
}

// refillTime is how long the bucket needs to gain n tokens
func (r *RateLimiter) refillTime(n float64) time.Duration {
	if n <= 0 || r.refill <= 0 {
		return 0
	}
	return time.Duration(n / float64(r.refill) * float64(time.Second))
}

// Clients returns the number of tracked addresses
func (r *RateLimiter) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

// prune drops buckets untouched for longer than ttl
func (r *RateLimiter) prune(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for client, b := range r.buckets {
		if now.Sub(b.lastSeen) > ttl {
			delete(r.buckets, client)
			n++
		}
	}
	return n
}

func (r *RateLimiter) sweep() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := r.prune(now, LimiterTTL); n > 0 {
				log.Debug().Int("buckets", n).Msg("Dropped idle rate limit buckets")
			}
		case <-r.done:
			return
		}
	}
}

// Stop ends the sweeper; safe to call more than once
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// setQuotaHeaders advertises q on every response, admitted or not
func setQuotaHeaders(h http.Header, q Quota) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(q.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(q.Reset.Unix(), 10))
	if q.RetryAfter > 0 {
		h.Set("Retry-After", strconv.Itoa(int(math.Ceil(q.RetryAfter.Seconds()))))
	}
}

// RateLimitMiddleware answers 429 with a translated envelope once an address spends its bucket
func RateLimitMiddleware(rl *RateLimiter, translator *i18n.Translator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			client := c.RealIP()
			admitted, q := rl.Take(client)
			setQuotaHeaders(c.Response().Header(), q)

			if admitted {
				return next(c)
			}

			log.Warn().
				Str("client_ip", client).
				Dur("retry_after", q.RetryAfter).
				Str("path", c.Path()).
				Msg("Request throttled")
			msg := translator.T(c.Request().Context(), i18n.MsgRateLimited, nil)
			return reject(c, http.StatusTooManyRequests, msg)
		}
	}
}
