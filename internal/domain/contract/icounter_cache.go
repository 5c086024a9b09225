package contract

import (
	"context"
	"time"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// ICounterCache defines the key-value operations the counter engine consumes
// from the cache store. Implementations must make ToggleLiker and MarkViewed
// atomic (single round trip); everything else is a plain cache operation.
type ICounterCache interface {
	// Warm state. A liker set is "warm" when its key exists, even if the
	// entity has zero likes (the implementation keeps a sentinel member so
	// the key never disappears just because the set drained).
	HasLikerSet(ctx context.Context, domain entity.ContentDomain, entityID string) (bool, error)
	PopulateLikers(ctx context.Context, domain entity.ContentDomain, entityID string, actorIDs []string, ttl time.Duration) error

	// Like set + counter.
	ToggleLiker(ctx context.Context, domain entity.ContentDomain, entityID, actorID string, ttl time.Duration) (liked bool, err error)
	IsLiker(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error)
	GetLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error)
	ScanLikeCounts(ctx context.Context, domain entity.ContentDomain, limit int64) (map[string]int64, error)

	// View delta (unflushed increments since the last write-back).
	IncrementViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string, ttl time.Duration) (int64, error)
	GetViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error)
	DecrementViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string, by int64) (int64, error)
	DeleteViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) error
	ScanViewDeltas(ctx context.Context, domain entity.ContentDomain, limit int64) ([]string, error)

	// View dedup marker: atomic set-if-absent with the cooldown TTL.
	// Returns true when the marker was absent (the view should be counted).
	MarkViewed(ctx context.Context, domain entity.ContentDomain, entityID, viewer string, cooldown time.Duration) (bool, error)

	// Warm lease lock. Acquire is a single non-blocking attempt; callers
	// implement their own bounded wait. Release is a no-op unless the lock
	// still holds the given token.
	AcquireWarmLock(ctx context.Context, domain entity.ContentDomain, entityID, token string, lease time.Duration) (bool, error)
	ReleaseWarmLock(ctx context.Context, domain entity.ContentDomain, entityID, token string) error
}
