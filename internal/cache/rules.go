// Package cache keeps the active category mapping rules in Redis so that
// back-to-back imports do not reload the same rule set from PostgreSQL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/redis/go-redis/v9"
)

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// kv is the part of the redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RuleCache is a read-through core.RuleSource. Redis failures fall back to
// the underlying source.
type RuleCache struct {
	client kv
	source core.RuleSource
	ttl    time.Duration
	prefix string
}

var _ core.RuleSource = (*RuleCache)(nil)

// NewRuleCache wraps source with a Redis cache. A nil client disables
// caching and every call goes straight to source.
func NewRuleCache(client redis.Cmdable, source core.RuleSource, ttl time.Duration, prefix string) *RuleCache {
	c := &RuleCache{source: source, ttl: ttl, prefix: prefix}
	if client != nil {
		c.client = client
	}
	return c
}

func (c *RuleCache) key(version string) string {
	return c.prefix + version
}

// ActiveMappingRules returns the cached rule set of version, loading and
// storing it on a miss. An empty rule set is not cached.
func (c *RuleCache) ActiveMappingRules(ctx context.Context, version string) ([]core.MappingRule, error) {
	if c.client == nil {
		return c.source.ActiveMappingRules(ctx, version)
	}

	logger := logging.WithFields(ctx, "mapping_version", version)
	key := c.key(version)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rules []core.MappingRule
		if jsonErr := json.Unmarshal(data, &rules); jsonErr == nil {
			logger.Debug("mapping rules served from cache", "rules", len(rules))
			return rules, nil
		}
		logger.Warn("discarding undecodable cached rules")
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn("rule cache read failed", "error", err)
	}

	rules, err := c.source.ActiveMappingRules(ctx, version)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return rules, nil
	}

	payload, err := json.Marshal(rules)
	if err != nil {
		return rules, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("rule cache write failed", "error", err)
	}
	return rules, nil
}

// Invalidate drops the cached rule set of version.
func (c *RuleCache) Invalidate(ctx context.Context, version string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(version)).Err(); err != nil {
		return fmt.Errorf("invalidate rules %s: %w", version, err)
	}
	return nil
}
