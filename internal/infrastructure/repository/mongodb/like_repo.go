package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// LikeRepository is the MongoDB implementation of ILikeRepository. Each
// domain has its own like collection (post_likes, archive_likes); rows are
// soft-deleted so re-likes reuse the same document.
type LikeRepository struct {
	db *mongo.Database
}

// NewLikeRepository creates and returns a new LikeRepository instance.
func NewLikeRepository(db *mongo.Database) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) collection(domain entity.ContentDomain) *mongo.Collection {
	return r.db.Collection(fmt.Sprintf("%s_likes", domain))
}

// UpsertLike creates or revives the like row for (entity, actor). Applying
// the same event twice leaves the same end state.
func (r *LikeRepository) UpsertLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) error {
	now := time.Now().UTC()
	filter := bson.M{"entity_id": entityID, "actor_id": actorID}
	update := bson.M{
		"$set": bson.M{
			"domain":     domain,
			"is_deleted": false,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.New().String(),
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection(domain).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert like row for %s/%s: %w", domain, entityID, err)
	}
	return nil
}

// DeleteLike soft-deletes the like row if present; a no-op when the row is
// already absent or deleted, so duplicate unlike events are safe.
func (r *LikeRepository) DeleteLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) error {
	now := time.Now().UTC()
	filter := bson.M{"entity_id": entityID, "actor_id": actorID, "is_deleted": false}
	update := bson.M{"$set": bson.M{"is_deleted": true, "updated_at": now}}

	if _, err := r.collection(domain).UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to delete like row for %s/%s: %w", domain, entityID, err)
	}
	return nil
}

// ListLikerIDs returns every actor id with an active like on the entity.
// This is the loader the cache warmer runs under its lease lock.
func (r *LikeRepository) ListLikerIDs(ctx context.Context, domain entity.ContentDomain, entityID string) ([]string, error) {
	filter := bson.M{"entity_id": entityID, "is_deleted": false}
	opts := options.Find().SetProjection(bson.M{"actor_id": 1})

	cursor, err := r.collection(domain).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list liker ids for %s/%s: %w", domain, entityID, err)
	}
	defer cursor.Close(ctx)

	var rows []entity.Like
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode liker ids for %s/%s: %w", domain, entityID, err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ActorID
	}
	return ids, nil
}

// CountLikes counts active like rows for the entity.
func (r *LikeRepository) CountLikes(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	filter := bson.M{"entity_id": entityID, "is_deleted": false}
	count, err := r.collection(domain).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count like rows for %s/%s: %w", domain, entityID, err)
	}
	return count, nil
}

var _ contract.ILikeRepository = (*LikeRepository)(nil)
