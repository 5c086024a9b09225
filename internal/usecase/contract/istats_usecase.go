package usecasecontract

import (
	"context"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// IStatsUsecase is the aggregate-read surface exposed to handlers.
type IStatsUsecase interface {
	GetStats(ctx context.Context, domain entity.ContentDomain, entityID string) (*entity.EntityStats, error)
}
