package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const (
	defaultLimiterKeys = 50_000
	defaultLimiterIdle = 10 * time.Minute
)

var rateLimited = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "campushub",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limiter.",
	},
	[]string{"limiter"},
)

func init() {
	prometheus.MustRegister(rateLimited)
}

// keyFunc maps a request to the identity its bucket is keyed by.
type keyFunc func(*gin.Context) string

// KeyBySessionOrIP keys by device session, falling back to the client IP.
func KeyBySessionOrIP() keyFunc {
	return func(c *gin.Context) string {
		if s := SessionIDFrom(c); s != "" {
			return "sess:" + s
		}
		return "ip:" + c.ClientIP()
	}
}

// KeyByIP keys by client IP only. Submission limits use it because a client
// can always drop its session cookie.
func KeyByIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// RateLimiter is a per-identity token bucket limiter. Buckets live in a
// bounded LRU and expire after sitting idle, so a flood of distinct keys
// cannot grow memory without limit. Limits are process-local.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	keyFn   keyFunc
	buckets *expirable.LRU[string, *rate.Limiter]
	now     func() time.Time
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (at least 1), keyed by keyFn.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		name:    "global",
		limit:   rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: expirable.NewLRU[string, *rate.Limiter](defaultLimiterKeys, nil, defaultLimiterIdle),
		now:     time.Now,
	}
}

// Named sets the limiter label used in campushub_http_rate_limited_total.
func (rl *RateLimiter) Named(name string) *RateLimiter {
	if name != "" {
		rl.name = name
	}
	return rl
}

// bucket returns the limiter for key. Re-adding a hit refreshes its idle TTL.
func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	if lim, ok := rl.buckets.Get(key); ok {
		rl.buckets.Add(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rl.limit, rl.burst)
	rl.buckets.Add(key, lim)
	return lim
}

// reserve takes a token for key. When none is available it returns false
// and how long until one would be.
func (rl *RateLimiter) reserve(key string) (bool, time.Duration) {
	now := rl.now()
	r := rl.bucket(key).ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// retryAfter renders d as whole seconds, rounded up and at least 1.
func retryAfter(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// IsRateBypass reports whether IdempotencyValidator found a stored result
// for this request, in which case limiters let it through.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Get(ctxKeyRateBypass)
	v, _ := b.(bool)
	return v
}

// Handler enforces the limit. Rejected requests get 429 with Retry-After
// set to when the bucket next has a token.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		ok, wait := rl.reserve(rl.keyFn(c))
		if ok {
			c.Next()
			return
		}
		rateLimited.WithLabelValues(rl.name).Inc()
		c.Header("Retry-After", retryAfter(wait))
		abortJSON(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}
}
