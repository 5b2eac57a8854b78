package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const unreadCountKeyPrefix = "notifications:unread:"

type unreadCountCache struct {
	client *redis.Client
}

func NewUnreadCountCache(client *redis.Client) repository.UnreadCountCache {
	return &unreadCountCache{client: client}
}

func (c *unreadCountCache) key(userID string) string {
	return unreadCountKeyPrefix + userID
}

func (c *unreadCountCache) Get(ctx context.Context, userID string) (int64, error) {
	count, err := c.client.Get(ctx, c.key(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, repository.ErrCacheMiss
		}
		return 0, fmt.Errorf("failed to get unread count for user %s: %w", userID, err)
	}
	return count, nil
}

func (c *unreadCountCache) Set(ctx context.Context, userID string, count int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(userID), count, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache unread count for user %s: %w", userID, err)
	}
	return nil
}

func (c *unreadCountCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate unread count for user %s: %w", userID, err)
	}
	return nil
}
