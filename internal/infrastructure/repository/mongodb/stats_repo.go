package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// millisPerHour converts the date difference produced by $subtract into the
// age-in-hours the decay formula expects.
const millisPerHour = 3600000

// StatsRepository is the MongoDB implementation of IStatsRepository. Each
// domain has its own stats collection (post_stats, archive_stats).
type StatsRepository struct {
	db *mongo.Database
}

// NewStatsRepository creates and returns a new StatsRepository instance.
func NewStatsRepository(db *mongo.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) collection(domain entity.ContentDomain) *mongo.Collection {
	return r.db.Collection(fmt.Sprintf("%s_stats", domain))
}

// IncrementViewCount atomically adds delta to the durable view count. The
// statement is a relative increment, so concurrent flushes and any other
// writers compose without application-side locking.
func (r *StatsRepository) IncrementViewCount(ctx context.Context, domain entity.ContentDomain, entityID string, delta int64) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": entityID}
	update := bson.M{
		"$inc": bson.M{"view_count": delta},
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"domain":          domain,
			"created_at":      now,
			"like_count":      int64(0),
			"hot_score":       float64(0),
			"hot_score_final": false,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection(domain).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to increment view count for %s/%s: %w", domain, entityID, err)
	}
	return nil
}

// SyncLikeCount overwrites the durable like count with the cache value. The
// overwrite is safe only because the cache counter has a single writer (the
// toggle script) and is itself backed by the like row table.
func (r *StatsRepository) SyncLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string, value int64) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": entityID}
	update := bson.M{
		"$set": bson.M{"like_count": value, "updated_at": now},
		"$setOnInsert": bson.M{
			"domain":          domain,
			"created_at":      now,
			"view_count":      int64(0),
			"hot_score":       float64(0),
			"hot_score_final": false,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection(domain).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to sync like count for %s/%s: %w", domain, entityID, err)
	}
	return nil
}

// GetStats retrieves one stats document.
func (r *StatsRepository) GetStats(ctx context.Context, domain entity.ContentDomain, entityID string) (*entity.EntityStats, error) {
	var stats entity.EntityStats
	err := r.collection(domain).FindOne(ctx, bson.M{"_id": entityID}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve stats for %s/%s: %w", domain, entityID, err)
	}
	return &stats, nil
}

// BulkUpdateHotScores recomputes the hot score for every entity created
// within the trailing window, as a single server-side UpdateMany with an
// aggregation pipeline, with no per-entity round trips.
func (r *StatsRepository) BulkUpdateHotScores(ctx context.Context, domain entity.ContentDomain, weights contract.HotScoreWeights, window time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-window)
	filter := bson.M{"created_at": bson.M{"$gte": cutoff}}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "hot_score", Value: hotScoreExpr(weights, now, 1)},
			{Key: "hot_score_final", Value: false},
			{Key: "updated_at", Value: now},
		}}},
	}

	res, err := r.collection(domain).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update hot scores for %s: %w", domain, err)
	}
	return res.ModifiedCount, nil
}

// FinalizeAgedHotScores recomputes entities that aged out of the window one
// last time, scaled by penalty, and marks them final so later cycles skip
// them.
func (r *StatsRepository) FinalizeAgedHotScores(ctx context.Context, domain entity.ContentDomain, weights contract.HotScoreWeights, window time.Duration, penalty float64, now time.Time) (int64, error) {
	cutoff := now.Add(-window)
	filter := bson.M{
		"created_at":      bson.M{"$lt": cutoff},
		"hot_score_final": bson.M{"$ne": true},
	}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "hot_score", Value: hotScoreExpr(weights, now, penalty)},
			{Key: "hot_score_final", Value: true},
			{Key: "updated_at", Value: now},
		}}},
	}

	res, err := r.collection(domain).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize aged hot scores for %s: %w", domain, err)
	}
	return res.ModifiedCount, nil
}

// hotScoreExpr builds the aggregation expression
//
//	(like_count*wLike + log10(1+view_count)*wView) * exp(-lambda*ageHours) * multiplier
//
// mirroring scheduler.Score.
func hotScoreExpr(w contract.HotScoreWeights, now time.Time, multiplier float64) bson.M {
	ageHours := bson.M{"$divide": bson.A{
		bson.M{"$subtract": bson.A{now, "$created_at"}},
		millisPerHour,
	}}
	base := bson.M{"$add": bson.A{
		bson.M{"$multiply": bson.A{"$like_count", w.Like}},
		bson.M{"$multiply": bson.A{
			bson.M{"$log10": bson.M{"$add": bson.A{1, "$view_count"}}},
			w.View,
		}},
	}}
	decay := bson.M{"$exp": bson.M{"$multiply": bson.A{-w.Lambda, ageHours}}}
	return bson.M{"$multiply": bson.A{base, decay, multiplier}}
}

var _ contract.IStatsRepository = (*StatsRepository)(nil)
