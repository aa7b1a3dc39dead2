// Package verdictcache stores recent verdicts in Redis with a short TTL,
// keyed by grid cell, crop, and period. Cross-request caching is an
// optimization only; a cache outage degrades to recomputation.
package verdictcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terrapulse/agrorisk/internal/domain"
)

// Cache is a Redis-backed verdict cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a verdict cache against the given Redis address.
func New(addr string, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

// Key builds the cache key for a request. Coordinates are rounded to the
// grid cell so nearby requests share entries.
func Key(req domain.EvaluationRequest) string {
	return fmt.Sprintf("verdict:%s:%s:%s", req.Crop, req.Coordinate.GridCell(), req.Range.String())
}

// Get returns the cached verdict for the request, or ok=false on a miss.
// Redis errors are logged and reported as misses.
func (c *Cache) Get(ctx context.Context, req domain.EvaluationRequest) (domain.RiskVerdict, bool) {
	key := Key(req)
	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.RiskVerdict{}, false
	}
	if err != nil {
		c.logger.Warn("verdict cache get failed", "key", key, "error", err)
		return domain.RiskVerdict{}, false
	}

	var verdict domain.RiskVerdict
	if err := json.Unmarshal([]byte(data), &verdict); err != nil {
		c.logger.Warn("verdict cache entry corrupt, ignoring", "key", key, "error", err)
		return domain.RiskVerdict{}, false
	}
	return verdict, true
}

// Put stores the verdict with the configured TTL. Failures are logged, never
// returned; caching is best effort.
func (c *Cache) Put(ctx context.Context, req domain.EvaluationRequest, verdict domain.RiskVerdict) {
	key := Key(req)
	data, err := json.Marshal(verdict)
	if err != nil {
		c.logger.Warn("verdict cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("verdict cache put failed", "key", key, "error", err)
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
