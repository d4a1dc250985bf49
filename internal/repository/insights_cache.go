package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"mindcare-go/internal/model"
)

// InsightsCache stores computed per-user tier counts.
//
// Every user has a version that Invalidate moves forward. An entry is only
// served while it carries the current version, so a count computed before a
// concurrent write can never be read back after that write.
type InsightsCache interface {
	// Get returns the cached counts, or nil on a miss, together with the
	// user's current version.
	Get(ctx context.Context, userID string) (*model.Insights, uint64, error)
	// Set stores insights computed while the user was at version.
	Set(ctx context.Context, userID string, version uint64, insights model.Insights) error
	// Invalidate drops the entry and moves the user's version forward.
	Invalidate(ctx context.Context, userID string) error
}

// cachedInsights is the stored form of an entry.
type cachedInsights struct {
	Version  uint64         `json:"version"`
	Insights model.Insights `json:"insights"`
}

type redisInsightsCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewInsightsCache creates a Redis-backed InsightsCache whose entries expire after ttl.
// Version counters do not expire.
func NewInsightsCache(redisClient *redis.Client, ttl time.Duration) InsightsCache {
	return &redisInsightsCache{redisClient: redisClient, ttl: ttl}
}

func insightsKey(userID string) string {
	return fmt.Sprintf("insights:%s", userID)
}

func insightsVersionKey(userID string) string {
	return fmt.Sprintf("insights:%s:version", userID)
}

// Get reads the entry and the version counter in one round trip.
func (c *redisInsightsCache) Get(ctx context.Context, userID string) (*model.Insights, uint64, error) {
	vals, err := c.redisClient.MGet(ctx, insightsKey(userID), insightsVersionKey(userID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get insights: %w", err)
	}

	var version uint64
	if raw, ok := vals[1].(string); ok {
		if version, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("failed to parse insights version %q: %w", raw, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, version, nil
	}
	var entry cachedInsights
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, version, fmt.Errorf("failed to unmarshal insights: %w", err)
	}
	if entry.Version != version {
		return nil, version, nil
	}
	return &entry.Insights, version, nil
}

// Set stores insights tagged with version for the cache TTL.
func (c *redisInsightsCache) Set(ctx context.Context, userID string, version uint64, insights model.Insights) error {
	data, err := json.Marshal(cachedInsights{Version: version, Insights: insights})
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}
	if err := c.redisClient.Set(ctx, insightsKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set insights: %w", err)
	}
	return nil
}

// Invalidate bumps the version and deletes the entry in one transaction.
func (c *redisInsightsCache) Invalidate(ctx context.Context, userID string) error {
	pipe := c.redisClient.TxPipeline()
	pipe.Incr(ctx, insightsVersionKey(userID))
	pipe.Del(ctx, insightsKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate insights: %w", err)
	}
	return nil
}

type noopInsightsCache struct{}

// NewNoopInsightsCache returns a cache that never hits. Used when Redis is not configured.
func NewNoopInsightsCache() InsightsCache {
	return noopInsightsCache{}
}

func (noopInsightsCache) Get(context.Context, string) (*model.Insights, uint64, error) {
	return nil, 0, nil
}

func (noopInsightsCache) Set(context.Context, string, uint64, model.Insights) error { return nil }

func (noopInsightsCache) Invalidate(context.Context, string) error { return nil }
