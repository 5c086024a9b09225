package contract

import (
	"context"
	"time"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// HotScoreWeights tunes the decayed popularity formula:
//
//	score = (likeCount*Like + log10(1+viewCount)*View) * exp(-Lambda*ageHours)
type HotScoreWeights struct {
	Like   float64
	View   float64
	Lambda float64
}

// IStatsRepository defines the operations consumed from the durable store for
// per-entity aggregates. Increments are expressed as relative deltas so the
// store can apply them concurrently without application-side locking.
type IStatsRepository interface {
	IncrementViewCount(ctx context.Context, domain entity.ContentDomain, entityID string, delta int64) error
	SyncLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string, value int64) error
	GetStats(ctx context.Context, domain entity.ContentDomain, entityID string) (*entity.EntityStats, error)

	// BulkUpdateHotScores recomputes the hot score for every entity created
	// within the trailing window, as one set-based statement.
	BulkUpdateHotScores(ctx context.Context, domain entity.ContentDomain, weights HotScoreWeights, window time.Duration, now time.Time) (int64, error)

	// FinalizeAgedHotScores gives entities that just aged out of the window
	// one terminal recompute (scaled by penalty) and marks them final so
	// they are not recomputed again on later cycles.
	FinalizeAgedHotScores(ctx context.Context, domain entity.ContentDomain, weights HotScoreWeights, window time.Duration, penalty float64, now time.Time) (int64, error)
}
