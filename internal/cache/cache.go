package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/azayd/website/backend/pkg/logger"
)

// ErrMiss is returned by Get when key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Keys used by the aggregate endpoints.
const (
	KeyServiceStats      = "service_stats_v2"
	KeyServiceCategories = "service_categories"
	KeyTeamStats         = "team_stats_v2"
	KeyTeamLeadership    = "team_leadership"
	KeyTeamDepartments   = "team_departments"
	KeyHomepage          = "homepage_data_v2"
)

// Remember returns the cached JSON value under key, or calls load and caches
// its result for ttl. Cache failures are logged and never returned; only
// load errors are.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if c != nil {
		raw, err := c.Get(ctx, key)
		switch {
		case err == nil:
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
			logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
		case !errors.Is(err, ErrMiss):
			logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if c != nil {
		raw, err := json.Marshal(v)
		if err == nil {
			err = c.Set(ctx, key, raw, ttl)
		}
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return v, nil
}

// Invalidate deletes keys, logging instead of failing.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}
