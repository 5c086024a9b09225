package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// Score computes the decayed popularity score for one entity. The bulk
// recompute runs as a set-based statement inside the durable store; this
// helper is the same formula in Go, used for spot checks and tests.
func Score(w contract.HotScoreWeights, likeCount, viewCount int64, ageHours float64) float64 {
	base := float64(likeCount)*w.Like + math.Log10(1+float64(viewCount))*w.View
	return base * math.Exp(-w.Lambda*ageHours)
}

// HotScoreJob periodically recomputes the decayed popularity score for one
// domain: a bulk recompute over the trailing activity window, plus one
// terminal (penalized) recompute for entities that just aged out so they are
// not revisited every cycle.
type HotScoreJob struct {
	domain  entity.ContentDomain
	stats   contract.IStatsRepository
	logger  usecasecontract.IAppLogger
	weights contract.HotScoreWeights
	window  time.Duration
	penalty float64
	now     func() time.Time
}

// NewHotScoreJob creates the hot-score job for a domain.
func NewHotScoreJob(
	domain entity.ContentDomain,
	stats contract.IStatsRepository,
	logger usecasecontract.IAppLogger,
	weights contract.HotScoreWeights,
	window time.Duration,
	penalty float64,
) *HotScoreJob {
	return &HotScoreJob{
		domain:  domain,
		stats:   stats,
		logger:  logger,
		weights: weights,
		window:  window,
		penalty: penalty,
		now:     time.Now,
	}
}

func (j *HotScoreJob) Name() string   { return "hotscore" }
func (j *HotScoreJob) Domain() string { return j.domain.String() }

// Run executes both recompute passes.
func (j *HotScoreJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	live, err := j.stats.BulkUpdateHotScores(ctx, j.domain, j.weights, j.window, now)
	if err != nil {
		return fmt.Errorf("hotscore: bulk update failed for %s: %w", j.domain, err)
	}

	aged, err := j.stats.FinalizeAgedHotScores(ctx, j.domain, j.weights, j.window, j.penalty, now)
	if err != nil {
		return fmt.Errorf("hotscore: aged finalize failed for %s: %w", j.domain, err)
	}

	j.logger.Infof("hotscore: recomputed %d live and finalized %d aged entities for %s", live, aged, j.domain)
	return nil
}
