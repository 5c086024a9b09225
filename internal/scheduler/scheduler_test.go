package scheduler_test

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/infrastructure/logger"
	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
)

var testLogger = logger.NewNop()

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// jobCache fakes the slice of the counter cache the background jobs touch.
// The embedded interface panics on anything a job should never call.
type jobCache struct {
	contract.ICounterCache

	mu         sync.Mutex
	deltas     map[string]int64
	likeCounts map[string]int64
}

func newJobCache() *jobCache {
	return &jobCache{
		deltas:     make(map[string]int64),
		likeCounts: make(map[string]int64),
	}
}

func (c *jobCache) setDelta(entityID string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltas[entityID] = delta
}

func (c *jobCache) addDelta(entityID string, by int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltas[entityID] += by
}

func (c *jobCache) delta(entityID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.deltas[entityID]
	return d, ok
}

func (c *jobCache) ScanViewDeltas(ctx context.Context, domain entity.ContentDomain, limit int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for id := range c.deltas {
		out = append(out, id)
	}
	return out, nil
}

func (c *jobCache) GetViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.deltas[entityID]
	if !ok {
		return 0, contract.ErrCacheMiss
	}
	return d, nil
}

func (c *jobCache) DecrementViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string, by int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltas[entityID] -= by
	return c.deltas[entityID], nil
}

func (c *jobCache) DeleteViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.deltas, entityID)
	return nil
}

func (c *jobCache) ScanLikeCounts(ctx context.Context, domain entity.ContentDomain, limit int64) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.likeCounts))
	for id, v := range c.likeCounts {
		out[id] = v
	}
	return out, nil
}

// recordingStatsRepo records durable writes and hot score recomputes.
type recordingStatsRepo struct {
	mu         sync.Mutex
	viewCounts map[string]int64
	likeCounts map[string]int64
	failFor    map[string]error

	// onIncrement runs after a successful durable view increment, to
	// simulate traffic arriving mid-flush.
	onIncrement func(entityID string)

	bulkCalls []hotScoreCall
	agedCalls []hotScoreCall
	bulkErr   error
}

type hotScoreCall struct {
	weights contract.HotScoreWeights
	window  time.Duration
	penalty float64
	now     time.Time
}

var _ contract.IStatsRepository = (*recordingStatsRepo)(nil)

func newRecordingStatsRepo() *recordingStatsRepo {
	return &recordingStatsRepo{
		viewCounts: make(map[string]int64),
		likeCounts: make(map[string]int64),
		failFor:    make(map[string]error),
	}
}

func (r *recordingStatsRepo) IncrementViewCount(ctx context.Context, domain entity.ContentDomain, entityID string, delta int64) error {
	r.mu.Lock()
	if err := r.failFor[entityID]; err != nil {
		r.mu.Unlock()
		return err
	}
	r.viewCounts[entityID] += delta
	hook := r.onIncrement
	r.mu.Unlock()
	if hook != nil {
		hook(entityID)
	}
	return nil
}

func (r *recordingStatsRepo) SyncLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor[entityID]; err != nil {
		return err
	}
	r.likeCounts[entityID] = value
	return nil
}

func (r *recordingStatsRepo) GetStats(ctx context.Context, domain entity.ContentDomain, entityID string) (*entity.EntityStats, error) {
	return nil, nil
}

func (r *recordingStatsRepo) BulkUpdateHotScores(ctx context.Context, domain entity.ContentDomain, weights contract.HotScoreWeights, window time.Duration, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bulkErr != nil {
		return 0, r.bulkErr
	}
	r.bulkCalls = append(r.bulkCalls, hotScoreCall{weights: weights, window: window, now: now})
	return 1, nil
}

func (r *recordingStatsRepo) FinalizeAgedHotScores(ctx context.Context, domain entity.ContentDomain, weights contract.HotScoreWeights, window time.Duration, penalty float64, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agedCalls = append(r.agedCalls, hotScoreCall{weights: weights, window: window, penalty: penalty, now: now})
	return 1, nil
}

func (r *recordingStatsRepo) viewCount(entityID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewCounts[entityID]
}

func (r *recordingStatsRepo) likeCount(entityID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likeCounts[entityID]
}
