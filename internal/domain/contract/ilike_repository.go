package contract

import (
	"context"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// ILikeRepository defines the interface for durable like row persistence.
// UpsertLike and DeleteLike must be idempotent: the event consumer may apply
// the same toggle event more than once.
type ILikeRepository interface {
	UpsertLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) error
	DeleteLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) error
	ListLikerIDs(ctx context.Context, domain entity.ContentDomain, entityID string) ([]string, error)
	CountLikes(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error)
}
