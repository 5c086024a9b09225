package scheduler

import (
	"context"
	"fmt"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// WriteBackJob reconciles cache-resident counters into the durable aggregate
// columns for one domain.
//
// View deltas are flushed conservatively: read d, add d durably, then
// decrement the key by exactly d. Increments that land between the read and
// the decrement stay in the cache for the next cycle instead of being lost.
// Like counters are absolute values backed by the durable like rows, so they
// are synced with a plain overwrite.
type WriteBackJob struct {
	domain     entity.ContentDomain
	cache      contract.ICounterCache
	stats      contract.IStatsRepository
	logger     usecasecontract.IAppLogger
	metrics    *metrics.Metrics
	batchLimit int64
}

// NewWriteBackJob creates the write-back job for a domain. batchLimit caps
// how many keys one run scans; the remainder is picked up on the next run.
func NewWriteBackJob(
	domain entity.ContentDomain,
	cache contract.ICounterCache,
	stats contract.IStatsRepository,
	logger usecasecontract.IAppLogger,
	m *metrics.Metrics,
	batchLimit int64,
) *WriteBackJob {
	return &WriteBackJob{
		domain:     domain,
		cache:      cache,
		stats:      stats,
		logger:     logger,
		metrics:    m,
		batchLimit: batchLimit,
	}
}

func (j *WriteBackJob) Name() string   { return "writeback" }
func (j *WriteBackJob) Domain() string { return j.domain.String() }

// Run flushes view deltas and syncs like counters. Per-entity failures are
// logged and skipped; they retry naturally on the next cycle because the
// flush is idempotent by construction.
func (j *WriteBackJob) Run(ctx context.Context) error {
	if err := j.flushViewDeltas(ctx); err != nil {
		return err
	}
	return j.syncLikeCounts(ctx)
}

func (j *WriteBackJob) flushViewDeltas(ctx context.Context) error {
	entityIDs, err := j.cache.ScanViewDeltas(ctx, j.domain, j.batchLimit)
	if err != nil {
		return fmt.Errorf("writeback: view delta scan failed for %s: %w", j.domain, err)
	}

	for _, id := range entityIDs {
		if err := j.flushOne(ctx, id); err != nil {
			j.metrics.FlushErrors.WithLabelValues(j.domain.String()).Inc()
			j.logger.Errorf("writeback: skipping %s/%s: %v", j.domain, id, err)
		}
	}
	if len(entityIDs) > 0 {
		j.logger.Infof("writeback: flushed %d view delta keys for %s", len(entityIDs), j.domain)
	}
	return nil
}

func (j *WriteBackJob) flushOne(ctx context.Context, entityID string) error {
	delta, err := j.cache.GetViewDelta(ctx, j.domain, entityID)
	if err != nil {
		return fmt.Errorf("read delta: %w", err)
	}

	// Zombie key: already fully flushed, or corrupted to non-positive.
	if delta <= 0 {
		if err := j.cache.DeleteViewDelta(ctx, j.domain, entityID); err != nil {
			return fmt.Errorf("delete zombie: %w", err)
		}
		return nil
	}

	if err := j.stats.IncrementViewCount(ctx, j.domain, entityID, delta); err != nil {
		return fmt.Errorf("durable increment: %w", err)
	}
	if _, err := j.cache.DecrementViewDelta(ctx, j.domain, entityID, delta); err != nil {
		return fmt.Errorf("cache decrement: %w", err)
	}
	j.metrics.FlushedEntities.WithLabelValues(j.domain.String(), "view").Inc()
	return nil
}

func (j *WriteBackJob) syncLikeCounts(ctx context.Context) error {
	counts, err := j.cache.ScanLikeCounts(ctx, j.domain, j.batchLimit)
	if err != nil {
		return fmt.Errorf("writeback: like count scan failed for %s: %w", j.domain, err)
	}

	for id, value := range counts {
		if err := j.stats.SyncLikeCount(ctx, j.domain, id, value); err != nil {
			j.metrics.FlushErrors.WithLabelValues(j.domain.String()).Inc()
			j.logger.Errorf("writeback: like sync skipped for %s/%s: %v", j.domain, id, err)
			continue
		}
		j.metrics.FlushedEntities.WithLabelValues(j.domain.String(), "like").Inc()
	}
	return nil
}
