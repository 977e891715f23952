package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const FeedVersionKey = "feed:version"

// FeedVersion returns the current feed generation. A missing key is generation 0.
func FeedVersion(ctx context.Context, client *redis.Client) (int64, error) {
	v, err := client.Get(ctx, FeedVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpFeedVersion invalidates every cached feed page at once.
func BumpFeedVersion(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Incr(ctx, FeedVersionKey).Err()
}

func FeedPageKey(version int64, page, limit int) string {
	return fmt.Sprintf("feed:v%d:page:%d:limit:%d", version, page, limit)
}

// GetBytes returns the cached value, or nil with no error on a miss.
func GetBytes(ctx context.Context, client *redis.Client, key string) ([]byte, error) {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func SetBytes(ctx context.Context, client *redis.Client, key string, data []byte, ttl time.Duration) error {
	return client.Set(ctx, key, data, ttl).Err()
}
