package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// StatsUsecase serves the reconciled per-entity aggregates. Reads come from
// the durable store, so they reflect the last write-back cycle rather than
// the live cache counters.
type StatsUsecase struct {
	statsRepo contract.IStatsRepository
	logger    usecasecontract.IAppLogger
}

// NewStatsUsecase creates a StatsUsecase.
func NewStatsUsecase(statsRepo contract.IStatsRepository, logger usecasecontract.IAppLogger) *StatsUsecase {
	return &StatsUsecase{statsRepo: statsRepo, logger: logger}
}

// GetStats returns the stats document for the entity. An entity with no
// interactions yet has no document; contract.ErrStatsNotFound passes through
// for the handler to map.
func (u *StatsUsecase) GetStats(ctx context.Context, domain entity.ContentDomain, entityID string) (*entity.EntityStats, error) {
	stats, err := u.statsRepo.GetStats(ctx, domain, entityID)
	if err != nil {
		if errors.Is(err, contract.ErrStatsNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read stats for %s/%s: %w", domain, entityID, err)
	}
	return stats, nil
}

var _ usecasecontract.IStatsUsecase = (*StatsUsecase)(nil)
