package contract

import "errors"

// ErrCacheMiss is returned by ICounterCache reads when the key does not
// exist. Callers decide whether a miss means "warm first" or "fall back to
// the durable store".
var ErrCacheMiss = errors.New("counter cache: key not found")

// ErrStatsNotFound is returned by IStatsRepository.GetStats when no stats
// document exists for the entity yet.
var ErrStatsNotFound = errors.New("entity stats not found")
