package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		limit   int
		window  time.Duration
		wantErr bool
	}{
		{"5/hour", 5, time.Hour, false},
		{"100/day", 100, 24 * time.Hour, false},
		{"10/m", 10, time.Minute, false},
		{"3/sec", 3, time.Second, false},
		{" 7 / Hours ", 7, time.Hour, false},
		{"5", 0, 0, true},
		{"five/hour", 0, 0, true},
		{"0/hour", 0, 0, true},
		{"5/week", 0, 0, true},
		{"5/", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			limit, window, err := ParseRate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.window, window)
		})
	}
}

func TestNewThrottleRule_Fallback(t *testing.T) {
	rule := NewThrottleRule(ScopeContact, "bogus", "5/hour", MessageSubmissionsThrottled)
	assert.Equal(t, 5, rule.Limit)
	assert.Equal(t, time.Hour, rule.Window)
	assert.Equal(t, ScopeContact, rule.Scope)
}

func newMiniRedisStore(t *testing.T) (*RedisThrottleStore, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewRedisThrottleStore(client)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestRedisThrottleStore_SlidingWindow(t *testing.T) {
	store, now := newMiniRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := store.Allow(ctx, "throttle:contact:ip:1.2.3.4", 2, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		*now = now.Add(10 * time.Minute)
	}

	ok, retry, err := store.Allow(ctx, "throttle:contact:ip:1.2.3.4", 2, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 40*time.Minute, retry, "oldest entry frees up first")

	ok, _, err = store.Allow(ctx, "throttle:contact:ip:5.6.7.8", 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	*now = now.Add(40*time.Minute + time.Millisecond)
	ok, _, err = store.Allow(ctx, "throttle:contact:ip:1.2.3.4", 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisThrottleStore_Unavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	_, _, err := NewRedisThrottleStore(client).Allow(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}

func TestMemoryThrottleStore(t *testing.T) {
	store := NewMemoryThrottleStore()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := store.Allow(ctx, "k", 2, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		now = now.Add(10 * time.Minute)
	}
	ok, retry, err := store.Allow(ctx, "k", 2, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 40*time.Minute, retry, "until the oldest hit leaves the window")

	// rejected calls are not recorded
	now = now.Add(40 * time.Minute)
	ok, _, _ = store.Allow(ctx, "k", 2, time.Hour)
	assert.True(t, ok)
	ok, retry, _ = store.Allow(ctx, "k", 2, time.Hour)
	assert.False(t, ok)
	assert.Equal(t, 10*time.Minute, retry)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Prune())
	assert.Zero(t, store.Prune())
}

func TestMemoryThrottleStore_SixthSubmissionWithinHour(t *testing.T) {
	store := NewMemoryThrottleStore()
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	now := start
	store.now = func() time.Time { return now }
	ctx := context.Background()

	// one submission every 11 minutes: the sixth lands at +55m
	allowed := 0
	for i := 0; i < 6; i++ {
		now = start.Add(time.Duration(i) * 11 * time.Minute)
		ok, retry, err := store.Allow(ctx, "throttle:contact:ip:10.0.0.9", 5, time.Hour)
		require.NoError(t, err)
		if ok {
			allowed++
			continue
		}
		assert.Equal(t, 5, i, "only the sixth is rejected")
		assert.Equal(t, 5*time.Minute, retry)
	}
	assert.Equal(t, 5, allowed)

	// further attempts within the hour stay rejected
	now = start.Add(59 * time.Minute)
	ok, _, _ := store.Allow(ctx, "throttle:contact:ip:10.0.0.9", 5, time.Hour)
	assert.False(t, ok)

	now = start.Add(time.Hour + time.Second)
	ok, _, _ = store.Allow(ctx, "throttle:contact:ip:10.0.0.9", 5, time.Hour)
	assert.True(t, ok, "first hit has left the window")
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func throttleRouter(store ThrottleStore, rule ThrottleRule) *gin.Engine {
	router := gin.New()
	router.POST("/api/contact/", Throttle(store, rule), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"status": "success"})
	})
	return router
}

func postContact(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/contact/", nil)
	req.RemoteAddr = ip + ":4000"
	router.ServeHTTP(w, req)
	return w
}

func TestThrottle_ContactScope(t *testing.T) {
	rule := NewThrottleRule(ScopeContact, "5/hour", "5/hour", MessageSubmissionsThrottled)
	router := throttleRouter(NewMemoryThrottleStore(), rule)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusCreated, postContact(router, "10.1.1.1").Code, "request %d", i+1)
	}

	w := postContact(router, "10.1.1.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	var body struct {
		Status     string `json:"status"`
		Message    string `json:"message"`
		RetryAfter int    `json:"retry_after"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, MessageSubmissionsThrottled, body.Message)
	assert.Positive(t, body.RetryAfter)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, postContact(router, "10.1.1.2").Code)
}

func TestThrottle_SharedRedisStore(t *testing.T) {
	store, _ := newMiniRedisStore(t)
	rule := ThrottleRule{Scope: ScopeAnon, Limit: 1, Window: time.Hour, Message: MessageRequestsThrottled}

	// two replicas behind one Redis share the budget
	a := throttleRouter(store, rule)
	b := throttleRouter(store, rule)
	assert.Equal(t, http.StatusCreated, postContact(a, "10.2.2.2").Code)
	w := postContact(b, "10.2.2.2")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}

func TestThrottle_FailsOpen(t *testing.T) {
	router := throttleRouter(failingStore{}, ThrottleRule{Scope: ScopeContact, Limit: 1, Window: time.Hour})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, postContact(router, "10.3.3.3").Code)
	}
}

func TestThrottle_NilStore(t *testing.T) {
	router := throttleRouter(nil, ThrottleRule{Scope: ScopeContact, Limit: 1, Window: time.Hour})
	assert.Equal(t, http.StatusCreated, postContact(router, "10.4.4.4").Code)
	assert.Equal(t, http.StatusCreated, postContact(router, "10.4.4.4").Code)
}
