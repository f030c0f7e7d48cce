package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
}

func TestClientRateLimiter_Middleware(t *testing.T) {
	limiter := NewClientRateLimiter(2, 2, false, log.New())
	handler := limiter.Middleware(okHandler())

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/audit", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusCreated, send("10.0.0.1:5678").Code)

	rec := send("10.0.0.1:9999")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 1800)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	// other clients keep their own bucket
	assert.Equal(t, http.StatusCreated, send("10.0.0.2:1234").Code)
}

func TestClientRateLimiter_Refill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewClientRateLimiter(10, 1, false, log.New())
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.reserve("a")
	assert.True(t, ok)

	ok, wait := limiter.reserve("a")
	assert.False(t, ok)
	assert.InDelta(t, (6 * time.Minute).Seconds(), wait.Seconds(), 1)

	now = now.Add(7 * time.Minute)
	ok, _ = limiter.reserve("a")
	assert.True(t, ok)
}

func TestClientRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewClientRateLimiter(10, 10, false, log.New())
	limiter.now = func() time.Time { return now }

	limiter.reserve("old")
	now = now.Add(2 * time.Hour)
	limiter.reserve("new")

	limiter.Cleanup(time.Hour)

	assert.NotContains(t, limiter.clients, "old")
	assert.Contains(t, limiter.clients, "new")
}

func TestClientRateLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	limiter := NewClientRateLimiter(1, 1, false, log.New())
	handler := limiter.Middleware(okHandler())

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/audit", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusCreated,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		remote     string
		trustProxy bool
		want       string
	}{
		{name: "forwarded behind trusted proxy", header: "203.0.113.7, 10.0.0.1", remote: "10.0.0.1:80", trustProxy: true, want: "203.0.113.7"},
		{name: "forwarded from untrusted peer", header: "203.0.113.7", remote: "10.0.0.1:80", want: "10.0.0.1"},
		{name: "trusted proxy without header", remote: "10.0.0.1:80", trustProxy: true, want: "10.0.0.1"},
		{name: "remote addr", remote: "192.0.2.1:4321", want: "192.0.2.1"},
		{name: "remote without port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.header != "" {
				req.Header.Set("X-Forwarded-For", tc.header)
			}
			assert.Equal(t, tc.want, ClientIP(req, tc.trustProxy))
		})
	}
}
