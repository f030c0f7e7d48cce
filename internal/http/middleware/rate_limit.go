package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientRateLimiter keeps one token bucket per client IP. Idle buckets are
// evicted by Cleanup.
type ClientRateLimiter struct {
	limit      rate.Limit
	burst      int
	trustProxy bool
	mu         sync.Mutex
	clients    map[string]*clientBucket
	now        func() time.Time
	log        *log.Logger
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientRateLimiter allows perHour requests per client, refilled evenly,
// with up to burst requests at once. Clients are keyed by peer address unless
// trustProxy is set, in which case X-Forwarded-For is honoured.
func NewClientRateLimiter(perHour, burst int, trustProxy bool, logger *log.Logger) *ClientRateLimiter {
	if burst <= 0 {
		burst = perHour
	}
	return &ClientRateLimiter{
		limit:      rate.Limit(float64(perHour) / time.Hour.Seconds()),
		burst:      burst,
		trustProxy: trustProxy,
		clients:    make(map[string]*clientBucket),
		now:        time.Now,
		log:        logger,
	}
}

func (l *ClientRateLimiter) reserve(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Hour
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets not used for idle.
func (l *ClientRateLimiter) Cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	for client, b := range l.clients {
		if b.lastSeen.Before(cutoff) {
			delete(l.clients, client)
		}
	}
}

// Middleware answers 429 with Retry-After once a client runs out of tokens.
func (l *ClientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := ClientIP(r, l.trustProxy)
		allowed, retryAfter := l.reserve(client)
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			l.log.WithFields(log.Fields{
				`client`:      client,
				`retry_after`: seconds,
				`request_id`:  RequestIDFromContext(r.Context()),
			}).Warn(`rate limit exceeded`)

			w.Header().Set(`Retry-After`, strconv.Itoa(seconds))
			w.Header().Set(`Content-Type`, `application/json`)
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				`success`: false,
				`message`: `Too many audit requests, please try again later`,
				`code`:    http.StatusTooManyRequests,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the peer address of the request. Only when the service
// sits behind a trusted proxy is the first X-Forwarded-For hop used instead,
// since clients can set that header freely.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get(`X-Forwarded-For`); fwd != "" {
			if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
