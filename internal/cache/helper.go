package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"spottr/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON looks key up in the local cache, then Redis, and unmarshals into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if b, ok := localGet(key); ok {
		if err := json.Unmarshal(b, dest); err == nil {
			observability.CacheLookups.WithLabelValues("local", "hit").Inc()
			return true, nil
		}
		localDel(key)
	}
	observability.CacheLookups.WithLabelValues("local", "miss").Inc()

	if client == nil {
		return false, nil
	}

	ctx, span := observability.StartCacheSpan(ctx, "get")
	defer span.End()

	b, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return false, nil
	}
	if err != nil {
		observability.SpanError(span, err)
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	observability.CacheLookups.WithLabelValues("redis", "hit").Inc()

	ttl := LocalTTL
	if remaining, err := client.TTL(ctx, key).Result(); err == nil && remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	localSet(key, b, int(ttl.Seconds()))
	return true, nil
}

// SetJSON marshals v and stores it under key in both tiers.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	localTTL := ttl
	if localTTL > LocalTTL {
		localTTL = LocalTTL
	}
	localSet(key, b, int(localTTL.Seconds()))

	if client == nil {
		return nil
	}
	ctx, span := observability.StartCacheSpan(ctx, "set")
	defer span.End()
	return client.Set(ctx, key, b, ttl).Err()
}

// CacheAside tries the cache first, on miss it calls fetch (which must populate dest),
// then stores the result with ttl. Cache failures never fail the read.
func CacheAside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if found, err := GetJSON(ctx, key, dest); err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
