package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/metrics"
)

// ResultCache is the optional warm cache for ranked responses. A nil
// receiver or nil client disables it entirely; ranking stays deterministic
// either way. Keys embed the snapshot id so two corpus snapshots loaded by
// different processes never share entries.
type ResultCache struct {
	client     *redis.Client
	ttl        time.Duration
	snapshotID uuid.UUID
	logger     *logrus.Logger
}

func NewResultCache(client *redis.Client, ttl time.Duration, snapshotID uuid.UUID, logger *logrus.Logger) *ResultCache {
	if client == nil {
		return nil
	}
	return &ResultCache{
		client:     client,
		ttl:        ttl,
		snapshotID: snapshotID,
		logger:     logger,
	}
}

// Enabled reports whether a Redis backend is wired in.
func (c *ResultCache) Enabled() bool {
	return c != nil
}

// Key builds a namespaced cache key for one operation invocation.
func (c *ResultCache) Key(operation string, args ...interface{}) string {
	if c == nil {
		return ""
	}
	key := fmt.Sprintf("reco:%s:%s", c.snapshotID, operation)
	for _, arg := range args {
		key += fmt.Sprintf(":%v", arg)
	}
	return key
}

// Get unmarshals a cached result into dest, reporting whether it was a hit.
// The operation labels the lookup counter.
func (c *ResultCache) Get(ctx context.Context, operation, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		metrics.CacheRequests.WithLabelValues(operation, "miss").Inc()
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to decode cached result")
		metrics.CacheRequests.WithLabelValues(operation, "decode_error").Inc()
		return false
	}
	metrics.CacheRequests.WithLabelValues(operation, "hit").Inc()
	return true
}

// Set stores a result; cache failures are logged and otherwise ignored.
func (c *ResultCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to encode result for caching")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to cache result")
	}
}

// Ping checks that the backing Redis is reachable. A disabled cache has
// nothing to reach and reports no error.
func (c *ResultCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
