package middlewares_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	mw "github.com/5w1tchy/book-catalog-api/internal/api/middlewares"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func limitedHandler(l mw.Limiter) http.Handler {
	return mw.RateLimit(l, mw.PerIPKey("rl"), quietLogger())(okHandler())
}

func hit(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLocalLimiter_BlocksAfterBurst(t *testing.T) {
	h := limitedHandler(mw.NewLocalLimiter(0.001, 2))

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1001").Code)

	rec := hit(h, "10.0.0.1:1002")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)
	assert.Equal(t, "token-bucket-local", rec.Header().Get("X-RateLimit-Policy"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var env struct {
		Success    bool `json:"success"`
		StatusCode int  `json:"status_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusTooManyRequests, env.StatusCode)

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1000").Code)
}

func TestLocalLimiter_Sweep(t *testing.T) {
	l := mw.NewLocalLimiter(10, 10)
	_, err := l.Allow(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())

	l.Sweep()
	assert.Equal(t, 1, l.Len(), "fresh keys survive a sweep")
}

func TestPerIPKey_PrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "rl:203.0.113.7", mw.PerIPKey("rl")(req))
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisLimiters_FailOpen(t *testing.T) {
	rdb := unreachableRedis(t)
	for name, l := range map[string]mw.Limiter{
		"token bucket":   mw.NewRedisTokenBucket(rdb, 5, 20),
		"sliding window": mw.NewRedisSlidingWindow(rdb, 100, time.Minute),
	} {
		t.Run(name, func(t *testing.T) {
			rec := hit(limitedHandler(l), "10.0.0.1:1000")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Policy"))
		})
	}
}
