package usecasecontract

import (
	"context"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// ILikeUsecase is the like-toggle surface exposed to handlers.
type ILikeUsecase interface {
	ToggleLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (liked bool, err error)
	IsLiked(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error)
	GetLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error)
}
