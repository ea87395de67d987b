package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimitBySubject(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Limit(1), 2)
	handler := RateLimitBySubject(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/LogInOut", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5001").Code)

	limited := send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:5000").Code, "other clients have their own bucket")
}

func TestKeyedRateLimiter_EvictsIdleBuckets(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Limit(1), 1)
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	first := limiter.GetLimiter("s-1")
	require.True(t, first.Allow())
	limiter.GetLimiter("s-2")
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(DefaultLimiterIdleTTL / 2)
	assert.Same(t, first, limiter.GetLimiter("s-1"), "active buckets are kept")

	now = now.Add(DefaultLimiterIdleTTL)
	limiter.GetLimiter("s-3")
	assert.Equal(t, 1, limiter.Len(), "idle buckets are dropped")
	assert.NotSame(t, first, limiter.GetLimiter("s-1"))
}
