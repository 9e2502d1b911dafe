package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"
)

// RateLimiter is a per-client token bucket keyed by remote address.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// idleClientTTL bounds how long an idle client's bucket is kept.
const idleClientTTL = 10 * time.Minute

// NewRateLimiter allows perSecond requests per client with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	l := rate.Limit(perSecond)
	if perSecond <= 0 {
		l = rate.Inf
	}
	return &RateLimiter{
		limit:   l,
		burst:   burst,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// Allow reports whether client may proceed now, and if not, how long until
// a token is available.
func (r *RateLimiter) Allow(client string) (bool, time.Duration) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, b := range r.clients {
		if now.Sub(b.lastSeen) > idleClientTTL {
			delete(r.clients, k)
		}
	}
	b, ok := r.clients[client]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(r.limit, r.burst)}
		r.clients[client] = b
	}
	b.lastSeen = now

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (r *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			ok, wait := r.Allow(clientKey(c.Request()))
			if !ok {
				secs := int(wait.Round(time.Second) / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many uploads, retry later")
			}
			return next(c)
		}
	}
}

func clientKey(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
