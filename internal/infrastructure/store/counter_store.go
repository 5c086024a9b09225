package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

const (
	// EmptyLikersSentinel marks a warmed liker set with zero real members,
	// so "warmed, zero likes" is distinguishable from "never warmed" by key
	// presence alone. Real actor ids are uuid-shaped and cannot collide.
	EmptyLikersSentinel = "__EMPTY__"

	// ttlJitterPercent spreads key expiry by up to 10% so counters populated
	// together do not expire together.
	ttlJitterPercent = 0.1

	scanPageSize = 500
)

// toggleScript flips set membership, adjusts the counter and refreshes both
// TTLs in one atomic server-side execution, so no concurrent toggle can
// interleave between the membership check and the counter adjustment. The
// counter is clamped at zero; the true source of record is the durable row
// count.
var toggleScript = redis.NewScript(`
local set = KEYS[1]
local cnt = KEYS[2]
local actor = ARGV[1]
local sentinel = ARGV[2]
local ttl = tonumber(ARGV[3])
local liked
if redis.call('SISMEMBER', set, actor) == 1 then
  redis.call('SREM', set, actor)
  if redis.call('DECR', cnt) < 0 then
    redis.call('SET', cnt, 0)
  end
  if redis.call('SCARD', set) == 0 then
    redis.call('SADD', set, sentinel)
  end
  liked = 0
else
  redis.call('SADD', set, actor)
  redis.call('SREM', set, sentinel)
  redis.call('INCR', cnt)
  liked = 1
end
redis.call('EXPIRE', set, ttl)
redis.call('EXPIRE', cnt, ttl)
return liked
`)

// releaseLockScript deletes the lock only if it still holds the caller's
// token, so an expired holder cannot release a lease it no longer owns.
var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// CounterStore implements contract.ICounterCache on a Redis client.
type CounterStore struct {
	rdb    *redis.Client
	prefix string
}

// NewCounterStore creates a CounterStore. prefix scopes every key so several
// deployments can share one Redis.
func NewCounterStore(rdb *redis.Client, prefix string) (*CounterStore, error) {
	if rdb == nil {
		return nil, errors.New("store: redis client cannot be nil")
	}
	return &CounterStore{rdb: rdb, prefix: prefix}, nil
}

func (s *CounterStore) likerSetKey(d entity.ContentDomain, id string) string {
	return fmt.Sprintf("%s%s:like:set:%s", s.prefix, d, id)
}

func (s *CounterStore) likeCountKey(d entity.ContentDomain, id string) string {
	return fmt.Sprintf("%s%s:like:cnt:%s", s.prefix, d, id)
}

func (s *CounterStore) viewDeltaKey(d entity.ContentDomain, id string) string {
	return fmt.Sprintf("%s%s:view:delta:%s", s.prefix, d, id)
}

func (s *CounterStore) viewSeenKey(d entity.ContentDomain, id, viewer string) string {
	return fmt.Sprintf("%s%s:view:seen:%s:%s", s.prefix, d, id, viewer)
}

func (s *CounterStore) warmLockKey(d entity.ContentDomain, id string) string {
	return fmt.Sprintf("%s%s:warm:lock:%s", s.prefix, d, id)
}

// HasLikerSet reports whether the liker set key exists. Key presence is the
// "already warmed" signal, not its content.
func (s *CounterStore) HasLikerSet(ctx context.Context, domain entity.ContentDomain, entityID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.likerSetKey(domain, entityID)).Result()
	if err != nil {
		return false, fmt.Errorf("store: exists failed for %s/%s: %w", domain, entityID, err)
	}
	return n > 0, nil
}

// PopulateLikers writes the liker set and counter in one pipeline. An empty
// actor list populates the sentinel only, with a zero counter.
func (s *CounterStore) PopulateLikers(ctx context.Context, domain entity.ContentDomain, entityID string, actorIDs []string, ttl time.Duration) error {
	setKey := s.likerSetKey(domain, entityID)
	cntKey := s.likeCountKey(domain, entityID)
	finalTTL := addJitter(ttl)

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, setKey)
	if len(actorIDs) == 0 {
		pipe.SAdd(ctx, setKey, EmptyLikersSentinel)
		pipe.Set(ctx, cntKey, 0, finalTTL)
	} else {
		members := make([]interface{}, len(actorIDs))
		for i, id := range actorIDs {
			members[i] = id
		}
		pipe.SAdd(ctx, setKey, members...)
		pipe.Set(ctx, cntKey, len(actorIDs), finalTTL)
	}
	pipe.Expire(ctx, setKey, finalTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: populate failed for %s/%s: %w", domain, entityID, err)
	}
	return nil
}

// ToggleLiker executes the atomic toggle script and returns the new state.
func (s *CounterStore) ToggleLiker(ctx context.Context, domain entity.ContentDomain, entityID, actorID string, ttl time.Duration) (bool, error) {
	keys := []string{s.likerSetKey(domain, entityID), s.likeCountKey(domain, entityID)}
	ttlSeconds := int64(addJitter(ttl) / time.Second)
	res, err := toggleScript.Run(ctx, s.rdb, keys, actorID, EmptyLikersSentinel, ttlSeconds).Int64()
	if err != nil {
		return false, fmt.Errorf("store: toggle script failed for %s/%s: %w", domain, entityID, err)
	}
	return res == 1, nil
}

// IsLiker reports current membership. The sentinel can never match a real
// actor id, so no special casing is needed.
func (s *CounterStore) IsLiker(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.likerSetKey(domain, entityID), actorID).Result()
	if err != nil {
		return false, fmt.Errorf("store: sismember failed for %s/%s: %w", domain, entityID, err)
	}
	return ok, nil
}

// GetLikeCount reads the live counter. Missing key returns ErrCacheMiss.
func (s *CounterStore) GetLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	val, err := s.rdb.Get(ctx, s.likeCountKey(domain, entityID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, contract.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("store: get like count failed for %s/%s: %w", domain, entityID, err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("store: unparseable like count for %s/%s: %w", domain, entityID, err)
	}
	return n, nil
}

// ScanLikeCounts returns up to limit (entityID, count) pairs for the domain.
func (s *CounterStore) ScanLikeCounts(ctx context.Context, domain entity.ContentDomain, limit int64) (map[string]int64, error) {
	keyPrefix := fmt.Sprintf("%s%s:like:cnt:", s.prefix, domain)
	keys, err := s.scanKeys(ctx, keyPrefix+"*", limit)
	if err != nil {
		return nil, fmt.Errorf("store: like count scan failed for %s: %w", domain, err)
	}
	if len(keys) == 0 {
		return map[string]int64{}, nil
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("store: like count mget failed for %s: %w", domain, err)
	}
	counts := make(map[string]int64, len(keys))
	for i, key := range keys {
		raw, ok := vals[i].(string)
		if !ok {
			continue // expired between scan and read
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[key[len(keyPrefix):]] = n
	}
	return counts, nil
}

// IncrementViewDelta adds one unflushed view and refreshes the key TTL.
func (s *CounterStore) IncrementViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string, ttl time.Duration) (int64, error) {
	key := s.viewDeltaKey(domain, entityID)
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, addJitter(ttl))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("store: view delta incr failed for %s/%s: %w", domain, entityID, err)
	}
	return incr.Val(), nil
}

// GetViewDelta reads the current unflushed view delta.
func (s *CounterStore) GetViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	val, err := s.rdb.Get(ctx, s.viewDeltaKey(domain, entityID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, contract.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("store: get view delta failed for %s/%s: %w", domain, entityID, err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("store: unparseable view delta for %s/%s: %w", domain, entityID, err)
	}
	return n, nil
}

// DecrementViewDelta subtracts exactly by from the delta, leaving concurrent
// increments that landed since the read in place for the next flush cycle.
func (s *CounterStore) DecrementViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string, by int64) (int64, error) {
	n, err := s.rdb.DecrBy(ctx, s.viewDeltaKey(domain, entityID), by).Result()
	if err != nil {
		return 0, fmt.Errorf("store: view delta decr failed for %s/%s: %w", domain, entityID, err)
	}
	return n, nil
}

// DeleteViewDelta removes an exhausted delta key.
func (s *CounterStore) DeleteViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) error {
	if err := s.rdb.Del(ctx, s.viewDeltaKey(domain, entityID)).Err(); err != nil {
		return fmt.Errorf("store: view delta del failed for %s/%s: %w", domain, entityID, err)
	}
	return nil
}

// ScanViewDeltas returns up to limit entity ids with pending view deltas.
func (s *CounterStore) ScanViewDeltas(ctx context.Context, domain entity.ContentDomain, limit int64) ([]string, error) {
	keyPrefix := fmt.Sprintf("%s%s:view:delta:", s.prefix, domain)
	keys, err := s.scanKeys(ctx, keyPrefix+"*", limit)
	if err != nil {
		return nil, fmt.Errorf("store: view delta scan failed for %s: %w", domain, err)
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = key[len(keyPrefix):]
	}
	return ids, nil
}

// MarkViewed sets the dedup marker only if absent, atomically, with the
// cooldown TTL. Returns true when the view should be counted.
func (s *CounterStore) MarkViewed(ctx context.Context, domain entity.ContentDomain, entityID, viewer string, cooldown time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.viewSeenKey(domain, entityID, viewer), 1, cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("store: view marker setnx failed for %s/%s: %w", domain, entityID, err)
	}
	return ok, nil
}

// AcquireWarmLock attempts the lease once; the lease TTL guarantees a
// crashed holder cannot block warming forever.
func (s *CounterStore) AcquireWarmLock(ctx context.Context, domain entity.ContentDomain, entityID, token string, lease time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.warmLockKey(domain, entityID), token, lease).Result()
	if err != nil {
		return false, fmt.Errorf("store: warm lock setnx failed for %s/%s: %w", domain, entityID, err)
	}
	return ok, nil
}

// ReleaseWarmLock releases the lease if it still holds the token.
func (s *CounterStore) ReleaseWarmLock(ctx context.Context, domain entity.ContentDomain, entityID, token string) error {
	key := s.warmLockKey(domain, entityID)
	if err := releaseLockScript.Run(ctx, s.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("store: warm lock release failed for %s/%s: %w", domain, entityID, err)
	}
	return nil
}

func (s *CounterStore) scanKeys(ctx context.Context, pattern string, limit int64) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, pattern, scanPageSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if limit > 0 && int64(len(keys)) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// addJitter spreads TTLs to avoid synchronized expiry.
func addJitter(baseTTL time.Duration) time.Duration {
	if baseTTL <= 0 {
		return baseTTL
	}
	return baseTTL + time.Duration(rand.Float64()*ttlJitterPercent*float64(baseTTL))
}

var _ contract.ICounterCache = (*CounterStore)(nil)
