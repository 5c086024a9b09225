package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// warmLockPollInterval is how often a waiting caller re-attempts the lease.
const warmLockPollInterval = 100 * time.Millisecond

// LikerLoader loads the full liker id list for one entity from the durable
// store. It runs at most once per warm, no matter how many callers race.
type LikerLoader func(ctx context.Context) ([]string, error)

// Warmer hydrates a cold liker set and counter from the durable store under a
// lease lock, so concurrent cold reads of the same entity do not stampede the
// database.
type Warmer struct {
	cache     contract.ICounterCache
	uuidGen   contract.IUUIDGenerator
	logger    usecasecontract.IAppLogger
	lockWait  time.Duration
	lockLease time.Duration
	ttl       time.Duration
}

// NewWarmer creates a Warmer. lockWait bounds how long a caller blocks waiting
// for another warmer to finish; lockLease bounds how long a crashed holder can
// block everyone else; ttl is applied to the populated keys.
func NewWarmer(
	cache contract.ICounterCache,
	uuidGen contract.IUUIDGenerator,
	logger usecasecontract.IAppLogger,
	lockWait, lockLease, ttl time.Duration,
) *Warmer {
	return &Warmer{
		cache:     cache,
		uuidGen:   uuidGen,
		logger:    logger,
		lockWait:  lockWait,
		lockLease: lockLease,
		ttl:       ttl,
	}
}

// Warm populates the liker set and counter for the entity if they are cold.
// An entity with zero likers still gets a warmed (sentinel-only) set, so the
// next cold check does not re-invoke the loader.
//
// If the lock wait times out the call fails open: it returns nil without
// warming and the caller proceeds with whatever state exists.
func (w *Warmer) Warm(ctx context.Context, domain entity.ContentDomain, entityID string, loader LikerLoader) error {
	warm, err := w.cache.HasLikerSet(ctx, domain, entityID)
	if err != nil {
		return fmt.Errorf("warmer: cold check failed for %s/%s: %w", domain, entityID, err)
	}
	if warm {
		return nil
	}

	token := w.uuidGen.NewUUID()
	acquired, err := w.acquireWithWait(ctx, domain, entityID, token)
	if err != nil {
		return fmt.Errorf("warmer: lock acquire failed for %s/%s: %w", domain, entityID, err)
	}
	if !acquired {
		w.logger.Warnf("warmer: lock wait timed out for %s/%s, proceeding without warming", domain, entityID)
		return nil
	}
	defer func() {
		// Release must run even if the caller's context is already gone.
		if relErr := w.cache.ReleaseWarmLock(context.Background(), domain, entityID, token); relErr != nil {
			w.logger.Errorf("warmer: lock release failed for %s/%s: %v", domain, entityID, relErr)
		}
	}()

	// Another caller may have warmed the entity while we waited for the lock.
	warm, err = w.cache.HasLikerSet(ctx, domain, entityID)
	if err != nil {
		return fmt.Errorf("warmer: re-check failed for %s/%s: %w", domain, entityID, err)
	}
	if warm {
		return nil
	}

	actorIDs, err := loader(ctx)
	if err != nil {
		return fmt.Errorf("warmer: loader failed for %s/%s: %w", domain, entityID, err)
	}

	if err := w.cache.PopulateLikers(ctx, domain, entityID, actorIDs, w.ttl); err != nil {
		return fmt.Errorf("warmer: populate failed for %s/%s: %w", domain, entityID, err)
	}
	w.logger.Debugf("warmer: hydrated %s/%s with %d likers", domain, entityID, len(actorIDs))
	return nil
}

func (w *Warmer) acquireWithWait(ctx context.Context, domain entity.ContentDomain, entityID, token string) (bool, error) {
	deadline := time.Now().Add(w.lockWait)
	for {
		acquired, err := w.cache.AcquireWarmLock(ctx, domain, entityID, token, w.lockLease)
		if err != nil {
			return false, err
		}
		if acquired {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(warmLockPollInterval):
		}
	}
}
