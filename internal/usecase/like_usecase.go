package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// ToggleRoutingKey is the queue routing key for like toggle events.
const ToggleRoutingKey = "counter.like.toggle"

// toggleEventBuffer bounds the async publish queue. When it is full events
// are dropped with a log line; the write-back scheduler still reconciles the
// counters, only the durable membership list lags.
const toggleEventBuffer = 256

const publishTimeout = 5 * time.Second

// LikeUsecase handles like toggling on top of the counter cache. The cache
// carries the live state; durable like rows are updated asynchronously from
// the published toggle events.
type LikeUsecase struct {
	cache     contract.ICounterCache
	likeRepo  contract.ILikeRepository
	warmer    *Warmer
	publisher usecasecontract.IEventPublisher
	uuidGen   contract.IUUIDGenerator
	logger    usecasecontract.IAppLogger
	metrics   *metrics.Metrics
	ttl       time.Duration

	events chan entity.ToggleEvent
	done   chan struct{}
}

// NewLikeUsecase creates a LikeUsecase and starts its publish worker. Call
// Close on shutdown to drain the event buffer.
func NewLikeUsecase(
	cache contract.ICounterCache,
	likeRepo contract.ILikeRepository,
	warmer *Warmer,
	publisher usecasecontract.IEventPublisher,
	uuidGen contract.IUUIDGenerator,
	logger usecasecontract.IAppLogger,
	m *metrics.Metrics,
	ttl time.Duration,
) *LikeUsecase {
	u := &LikeUsecase{
		cache:     cache,
		likeRepo:  likeRepo,
		warmer:    warmer,
		publisher: publisher,
		uuidGen:   uuidGen,
		logger:    logger,
		metrics:   m,
		ttl:       ttl,
		events:    make(chan entity.ToggleEvent, toggleEventBuffer),
		done:      make(chan struct{}),
	}
	go u.publishLoop()
	return u
}

// ToggleLike flips the like state of (entity, actor) and returns the new
// state. The membership check, the flip and the counter adjustment happen in
// one atomic cache round trip; the durable side effect is dispatched
// asynchronously and the caller does not wait for it.
func (u *LikeUsecase) ToggleLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error) {
	if err := u.ensureWarm(ctx, domain, entityID); err != nil {
		return false, err
	}

	liked, err := u.cache.ToggleLiker(ctx, domain, entityID, actorID, u.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like for %s/%s: %w", domain, entityID, err)
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	u.metrics.Toggles.WithLabelValues(domain.String(), action).Inc()

	ev := entity.ToggleEvent{
		EventID:    u.uuidGen.NewUUID(),
		Domain:     domain,
		EntityID:   entityID,
		ActorID:    actorID,
		Liked:      liked,
		OccurredAt: time.Now().UTC(),
	}
	select {
	case u.events <- ev:
	default:
		u.logger.Errorf("toggle event buffer full, dropping event %s (%s/%s)", ev.EventID, domain, entityID)
	}

	return liked, nil
}

// IsLiked reports whether the actor currently likes the entity.
func (u *LikeUsecase) IsLiked(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error) {
	if err := u.ensureWarm(ctx, domain, entityID); err != nil {
		return false, err
	}
	liked, err := u.cache.IsLiker(ctx, domain, entityID, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to check like state for %s/%s: %w", domain, entityID, err)
	}
	return liked, nil
}

// GetLikeCount returns the live like count. When the counter key is absent
// even after a (fail-open) warm attempt, the durable row count is returned
// instead.
func (u *LikeUsecase) GetLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	if err := u.ensureWarm(ctx, domain, entityID); err != nil {
		return 0, err
	}
	count, err := u.cache.GetLikeCount(ctx, domain, entityID)
	if errors.Is(err, contract.ErrCacheMiss) {
		return u.likeRepo.CountLikes(ctx, domain, entityID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read like count for %s/%s: %w", domain, entityID, err)
	}
	return count, nil
}

// Close stops the publish worker after draining buffered events.
func (u *LikeUsecase) Close() {
	close(u.events)
	<-u.done
}

func (u *LikeUsecase) ensureWarm(ctx context.Context, domain entity.ContentDomain, entityID string) error {
	warm, err := u.cache.HasLikerSet(ctx, domain, entityID)
	if err != nil {
		return fmt.Errorf("failed to check cache state for %s/%s: %w", domain, entityID, err)
	}
	if warm {
		return nil
	}
	return u.warmer.Warm(ctx, domain, entityID, func(ctx context.Context) ([]string, error) {
		return u.likeRepo.ListLikerIDs(ctx, domain, entityID)
	})
}

func (u *LikeUsecase) publishLoop() {
	defer close(u.done)
	for ev := range u.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := u.publisher.Publish(ctx, ToggleRoutingKey, ev)
		cancel()
		if err != nil {
			u.logger.Errorf("failed to publish toggle event %s: %v", ev.EventID, err)
		}
	}
}

// Ensure LikeUsecase implements the handler-facing contract.
var _ usecasecontract.ILikeUsecase = (*LikeUsecase)(nil)
