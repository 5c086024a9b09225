package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// ToggleEventApplier reflects toggle events into the durable like rows.
// Both branches are idempotent, so at-least-once delivery and duplicates
// converge to the same end state; ordering is not assumed (last applied
// wins, accepted because toggles are rare relative to views).
type ToggleEventApplier struct {
	likeRepo contract.ILikeRepository
	logger   usecasecontract.IAppLogger
	metrics  *metrics.Metrics
}

// NewToggleEventApplier creates a ToggleEventApplier.
func NewToggleEventApplier(likeRepo contract.ILikeRepository, logger usecasecontract.IAppLogger, m *metrics.Metrics) *ToggleEventApplier {
	return &ToggleEventApplier{likeRepo: likeRepo, logger: logger, metrics: m}
}

// Apply persists one toggle event.
func (a *ToggleEventApplier) Apply(ctx context.Context, ev entity.ToggleEvent) error {
	if ev.Liked {
		return a.likeRepo.UpsertLike(ctx, ev.Domain, ev.EntityID, ev.ActorID)
	}
	return a.likeRepo.DeleteLike(ctx, ev.Domain, ev.EntityID, ev.ActorID)
}

// ApplyJSON decodes and applies a raw queue message. Failures are logged and
// the message is dropped; the display counters live in the cache and are
// reconciled independently, only the durable membership list may lag.
func (a *ToggleEventApplier) ApplyJSON(ctx context.Context, body []byte) error {
	var ev entity.ToggleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		a.metrics.EventsApplied.WithLabelValues("dropped").Inc()
		a.logger.Errorf("dropping undecodable toggle event: %v", err)
		return fmt.Errorf("failed to decode toggle event: %w", err)
	}
	if err := a.Apply(ctx, ev); err != nil {
		a.metrics.EventsApplied.WithLabelValues("dropped").Inc()
		a.logger.Errorf("dropping toggle event %s after apply failure: %v", ev.EventID, err)
		return fmt.Errorf("failed to apply toggle event %s: %w", ev.EventID, err)
	}
	a.metrics.EventsApplied.WithLabelValues("applied").Inc()
	return nil
}
