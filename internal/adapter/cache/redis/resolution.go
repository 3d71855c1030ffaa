// Package redis caches public smartlink resolutions in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/smartlinks/internal/entity"
)

const (
	keyPrefix     = "smartlinks:resolution:"
	scanBatchSize = 100
)

func resolutionKey(artistSlug, trackSlug string) string {
	return keyPrefix + artistSlug + ":" + trackSlug
}

// artistPattern matches every resolution of one artist. Slugs never contain
// ':' or glob metacharacters.
func artistPattern(artistSlug string) string {
	return keyPrefix + artistSlug + ":*"
}

type ResolutionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResolutionCache(client *redis.Client, ttl time.Duration) *ResolutionCache {
	return &ResolutionCache{client: client, ttl: ttl}
}

// Get returns nil, nil on a miss.
func (c *ResolutionCache) Get(ctx context.Context, artistSlug, trackSlug string) (*entity.Resolution, error) {
	const op = "adapter.cache.redis.ResolutionCache.Get"

	b, err := c.client.Get(ctx, resolutionKey(artistSlug, trackSlug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: failed to get resolution: %w", op, err)
	}

	var res resolutionJSON
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("%s: failed to decode resolution: %w", op, err)
	}

	return res.toEntity(), nil
}

func (c *ResolutionCache) Set(ctx context.Context, artistSlug, trackSlug string, res *entity.Resolution) error {
	const op = "adapter.cache.redis.ResolutionCache.Set"

	b, err := json.Marshal(toResolutionJSON(res))
	if err != nil {
		return fmt.Errorf("%s: failed to encode resolution: %w", op, err)
	}

	if err := c.client.Set(ctx, resolutionKey(artistSlug, trackSlug), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set resolution: %w", op, err)
	}

	return nil
}

func (c *ResolutionCache) Invalidate(ctx context.Context, artistSlug string, trackSlugs ...string) error {
	const op = "adapter.cache.redis.ResolutionCache.Invalidate"

	if len(trackSlugs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(trackSlugs))
	for _, ts := range trackSlugs {
		keys = append(keys, resolutionKey(artistSlug, ts))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete resolutions: %w", op, err)
	}

	return nil
}

// InvalidateArtist drops every cached resolution under artistSlug.
func (c *ResolutionCache) InvalidateArtist(ctx context.Context, artistSlug string) error {
	const op = "adapter.cache.redis.ResolutionCache.InvalidateArtist"

	iter := c.client.Scan(ctx, 0, artistPattern(artistSlug), scanBatchSize).Iterator()

	keys := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())

		if len(keys) == scanBatchSize {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%s: failed to delete resolutions: %w", op, err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%s: failed to scan resolutions: %w", op, err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("%s: failed to delete resolutions: %w", op, err)
		}
	}

	return nil
}
