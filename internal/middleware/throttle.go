package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/azayd/website/backend/pkg/logger"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeContact = "contact"
	ScopeAnon    = "anon"

	MessageSubmissionsThrottled = "Too many submissions. Please try again later."
	MessageRequestsThrottled    = "Too many requests. Please try again later."
)

// ThrottleStore counts requests per key within a window.
type ThrottleStore interface {
	// Allow records one request for key and reports whether it fits in
	// limit per window. When it does not, retryAfter is the wait until a
	// slot frees up.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

// ThrottleRule is a named limit applied per client.
type ThrottleRule struct {
	Scope   string
	Limit   int
	Window  time.Duration
	Message string
}

// ParseRate reads rates such as "5/hour", "100/day" or "10/m". Only the
// first letter of the period is significant.
func ParseRate(s string) (int, time.Duration, error) {
	num, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || period == "" {
		return 0, 0, fmt.Errorf("invalid rate %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("invalid rate %q", s)
	}
	var window time.Duration
	switch strings.ToLower(strings.TrimSpace(period))[0] {
	case 's':
		window = time.Second
	case 'm':
		window = time.Minute
	case 'h':
		window = time.Hour
	case 'd':
		window = 24 * time.Hour
	default:
		return 0, 0, fmt.Errorf("invalid rate period %q", period)
	}
	return n, window, nil
}

// NewThrottleRule builds a rule from a rate string, falling back to
// fallback when rate does not parse.
func NewThrottleRule(scope, rate, fallback, message string) ThrottleRule {
	limit, window, err := ParseRate(rate)
	if err != nil {
		logger.Warn().Err(err).Str("scope", scope).Str("fallback", fallback).Msg("Invalid throttle rate, using fallback")
		limit, window, _ = ParseRate(fallback)
	}
	return ThrottleRule{Scope: scope, Limit: limit, Window: window, Message: message}
}

// Throttle rejects clients that exceeded rule with 429 and a Retry-After
// hint. Store failures let the request through.
func Throttle(store ThrottleStore, rule ThrottleRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || rule.Limit <= 0 {
			c.Next()
			return
		}

		key := "throttle:" + rule.Scope + ":" + throttleIdent(c)
		allowed, retryAfter, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			logger.FromGin(c).Warn().Err(err).Str("scope", rule.Scope).Msg("Throttle store unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			logger.FromGin(c).Info().Str("scope", rule.Scope).Str("ip", c.ClientIP()).Int("retry_after", seconds).Msg("Request throttled")
			response.TooManyRequests(c, rule.Message, seconds)
			c.Abort()
			return
		}
		c.Next()
	}
}

// throttleIdent keys authenticated admins by account, everyone else by IP.
func throttleIdent(c *gin.Context) string {
	if id := GetUserID(c); id > 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return "ip:" + c.ClientIP()
}

// slidingWindowScript keeps one sorted-set member per request scored by its
// time in milliseconds.
// KEYS[1] = throttle key
// ARGV[1] = limit, ARGV[2] = window ms, ARGV[3] = now ms, ARGV[4] = member
// Returns {1, 0} when allowed, {0, retry_ms} when throttled.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local retry = window
    if oldest[2] then
        retry = tonumber(oldest[2]) + window - now
    end
    return {0, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// RedisThrottleStore is a sliding-window log shared by every replica.
type RedisThrottleStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisThrottleStore(client *redis.Client) *RedisThrottleStore {
	return &RedisThrottleStore{client: client, now: time.Now}
}

func (s *RedisThrottleStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := s.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, s.client, []string{key}, limit, window.Milliseconds(), now, uuid.NewString()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("throttle script: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("throttle script: unexpected reply %v", res)
	}
	if res[0] == 1 {
		return true, 0, nil
	}
	return false, time.Duration(res[1]) * time.Millisecond, nil
}

// MemoryThrottleStore keeps the same sliding-window log as the Redis
// script, in process. It is used when Redis is disabled and only limits a
// single replica.
type MemoryThrottleStore struct {
	mu    sync.Mutex
	logs  map[string]*throttleLog
	calls int
	now   func() time.Time
}

type throttleLog struct {
	hits   []time.Time
	window time.Duration
}

// memoryPruneEvery is how many Allow calls pass between sweeps of idle keys.
const memoryPruneEvery = 1024

func NewMemoryThrottleStore() *MemoryThrottleStore {
	return &MemoryThrottleStore{logs: make(map[string]*throttleLog), now: time.Now}
}

func (s *MemoryThrottleStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.calls%memoryPruneEvery == 0 {
		s.pruneLocked(now)
	}

	l, ok := s.logs[key]
	if !ok {
		l = &throttleLog{}
		s.logs[key] = l
	}
	l.window = window
	l.hits = expire(l.hits, now.Add(-window))

	if len(l.hits) >= limit {
		return false, l.hits[0].Add(window).Sub(now), nil
	}
	l.hits = append(l.hits, now)
	return true, 0, nil
}

// Prune drops keys with no hits left in their window and returns how many
// went.
func (s *MemoryThrottleStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.now())
}

func (s *MemoryThrottleStore) pruneLocked(now time.Time) int {
	n := 0
	for key, l := range s.logs {
		l.hits = expire(l.hits, now.Add(-l.window))
		if len(l.hits) == 0 {
			delete(s.logs, key)
			n++
		}
	}
	return n
}

// expire drops hits at or before cutoff. hits is in ascending order.
func expire(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
