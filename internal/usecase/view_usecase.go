package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// ViewUsecase gates view counting behind a per-viewer cooldown and
// accumulates counted views as a cache-resident delta. It never touches the
// durable store; the write-back scheduler flushes the delta later.
type ViewUsecase struct {
	cache    contract.ICounterCache
	logger   usecasecontract.IAppLogger
	metrics  *metrics.Metrics
	cooldown time.Duration
	ttl      time.Duration
}

// NewViewUsecase creates a ViewUsecase. cooldown is the dedup window per
// (entity, viewer); ttl bounds the lifetime of the delta key.
func NewViewUsecase(
	cache contract.ICounterCache,
	logger usecasecontract.IAppLogger,
	m *metrics.Metrics,
	cooldown, ttl time.Duration,
) *ViewUsecase {
	return &ViewUsecase{
		cache:    cache,
		logger:   logger,
		metrics:  m,
		cooldown: cooldown,
		ttl:      ttl,
	}
}

// RegisterView counts one view unless the same viewer identity was already
// counted within the cooldown window. viewerIdentity is the authenticated
// actor id when present, otherwise a network-origin identifier.
func (u *ViewUsecase) RegisterView(ctx context.Context, domain entity.ContentDomain, entityID, viewerIdentity string) (bool, error) {
	fresh, err := u.cache.MarkViewed(ctx, domain, entityID, viewerIdentity, u.cooldown)
	if err != nil {
		return false, fmt.Errorf("failed to mark view for %s/%s: %w", domain, entityID, err)
	}
	if !fresh {
		u.metrics.Views.WithLabelValues(domain.String(), "deduped").Inc()
		return false, nil
	}

	if _, err := u.cache.IncrementViewDelta(ctx, domain, entityID, u.ttl); err != nil {
		return false, fmt.Errorf("failed to increment view delta for %s/%s: %w", domain, entityID, err)
	}
	u.metrics.Views.WithLabelValues(domain.String(), "counted").Inc()
	return true, nil
}

var _ usecasecontract.IViewUsecase = (*ViewUsecase)(nil)
