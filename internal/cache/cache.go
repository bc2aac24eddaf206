package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores transcripts in Redis keyed by the audio digest, using
// go-redis/v9. It is safe for concurrent use.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) SetTranscript(ctx context.Context, audioDigest, transcript string, ttl time.Duration) error {
	return c.client.Set(ctx, TranscriptKey(audioDigest), transcript, ttl).Err()
}

// GetTranscript returns the cached transcript for an audio digest. An empty
// cached value counts as a miss.
func (c *RedisCache) GetTranscript(ctx context.Context, audioDigest string) (string, bool, error) {
	val, err := c.client.Get(ctx, TranscriptKey(audioDigest)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, val != "", nil
}
