package repository

import (
	"context"
	"errors"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
)

var ErrCacheMiss = errors.New("cache miss")

// ListingCache is a read-through cache for listing lookups. Lifecycle writes
// must invalidate so a stale status is never served after a transition.
type ListingCache interface {
	Get(ctx context.Context, listingID string) (*entity.Listing, error)
	Set(ctx context.Context, listing *entity.Listing, ttl time.Duration) error
	Delete(ctx context.Context, listingID string) error
}

// UnreadCountCache caches per-user unread notification counts.
type UnreadCountCache interface {
	Get(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, count int64, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
