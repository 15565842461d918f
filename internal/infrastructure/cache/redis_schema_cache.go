package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/salesiq/backend/internal/domain/mapping"
)

const (
	sourceSchemaKeyPrefix    = "schema:source:"
	canonicalSchemaKeyPrefix = "schema:canonical:"
)

// RedisSchemaCache is a TTL cache decorator in front of the live schema
// providers. The registry itself stays re-fetch-per-call; callers that want
// caching wrap their providers with this type. Redis failures are treated as
// cache misses: the call falls through to the wrapped provider, and a failed
// write never fails the fetch.
type RedisSchemaCache struct {
	client    *redis.Client
	source    mapping.SourceSchemaProvider
	canonical mapping.CanonicalSchemaProvider
	ttl       time.Duration
	logger    *zap.Logger
}

// Interface compliance checks
var (
	_ mapping.SourceSchemaProvider    = (*RedisSchemaCache)(nil)
	_ mapping.CanonicalSchemaProvider = (*RedisSchemaCache)(nil)
)

// NewRedisSchemaCache wraps the given providers with a Redis TTL cache.
func NewRedisSchemaCache(
	client *redis.Client,
	source mapping.SourceSchemaProvider,
	canonical mapping.CanonicalSchemaProvider,
	ttl time.Duration,
	logger *zap.Logger,
) *RedisSchemaCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSchemaCache{
		client:    client,
		source:    source,
		canonical: canonical,
		ttl:       ttl,
		logger:    logger,
	}
}

// FetchSourceSchema returns the cached schema when fresh, otherwise fetches
// from the wrapped provider and caches the result.
func (c *RedisSchemaCache) FetchSourceSchema(ctx context.Context, system mapping.SystemCode, entity mapping.EntityType) (mapping.SourceFieldSchema, error) {
	key := fmt.Sprintf("%s%s:%s", sourceSchemaKeyPrefix, system, entity)

	var cached mapping.SourceFieldSchema
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	schema, err := c.source.FetchSourceSchema(ctx, system, entity)
	if err != nil {
		return mapping.SourceFieldSchema{}, err
	}
	c.store(ctx, key, schema)
	return schema, nil
}

// FetchCanonicalSchema returns the cached schema when fresh, otherwise
// fetches from the wrapped provider and caches the result.
func (c *RedisSchemaCache) FetchCanonicalSchema(ctx context.Context, entity mapping.EntityType, system mapping.SystemCode) (mapping.CanonicalFieldSchema, error) {
	key := fmt.Sprintf("%s%s:%s", canonicalSchemaKeyPrefix, entity, system)

	var cached mapping.CanonicalFieldSchema
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	schema, err := c.canonical.FetchCanonicalSchema(ctx, entity, system)
	if err != nil {
		return mapping.CanonicalFieldSchema{}, err
	}
	c.store(ctx, key, schema)
	return schema, nil
}

// Invalidate drops every cached schema for the (system, entity) pair. Used
// after a connector reconfiguration.
func (c *RedisSchemaCache) Invalidate(ctx context.Context, system mapping.SystemCode, entity mapping.EntityType) error {
	return c.client.Del(ctx,
		fmt.Sprintf("%s%s:%s", sourceSchemaKeyPrefix, system, entity),
		fmt.Sprintf("%s%s:%s", canonicalSchemaKeyPrefix, entity, system),
	).Err()
}

// lookup reads and decodes a cache entry. Any failure is a miss.
func (c *RedisSchemaCache) lookup(ctx context.Context, key string, out any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("schema cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("schema cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// store writes a cache entry with the configured TTL. Failures are logged
// and swallowed.
func (c *RedisSchemaCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("schema cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("schema cache write failed", zap.String("key", key), zap.Error(err))
	}
}
