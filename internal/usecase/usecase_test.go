package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	"github.com/Deokive/BE-sub001/internal/infrastructure/logger"
	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
	"github.com/Deokive/BE-sub001/internal/infrastructure/uuidgen"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

var testLogger = logger.NewNop()
var testUUIDGen = uuidgen.NewGenerator()

// memCounterCache is an in-memory stand-in for the Redis-backed store with
// the same behavioral contract: atomic toggle with clamp at zero, sentinel
// warm state, set-if-absent view markers and a token lease lock.
type memCounterCache struct {
	mu     sync.Mutex
	sets   map[string]map[string]bool
	counts map[string]int64
	deltas map[string]int64
	seen   map[string]bool
	locks  map[string]string

	// Failure injection
	FailToggle  bool
	LockBlocked bool // AcquireWarmLock always loses
}

var _ contract.ICounterCache = (*memCounterCache)(nil)

func newMemCounterCache() *memCounterCache {
	return &memCounterCache{
		sets:   make(map[string]map[string]bool),
		counts: make(map[string]int64),
		deltas: make(map[string]int64),
		seen:   make(map[string]bool),
		locks:  make(map[string]string),
	}
}

func ckey(domain entity.ContentDomain, entityID string) string {
	return fmt.Sprintf("%s/%s", domain, entityID)
}

func (m *memCounterCache) HasLikerSet(ctx context.Context, domain entity.ContentDomain, entityID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sets[ckey(domain, entityID)]
	return ok, nil
}

func (m *memCounterCache) PopulateLikers(ctx context.Context, domain entity.ContentDomain, entityID string, actorIDs []string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]bool, len(actorIDs))
	for _, id := range actorIDs {
		set[id] = true
	}
	m.sets[ckey(domain, entityID)] = set
	m.counts[ckey(domain, entityID)] = int64(len(actorIDs))
	return nil
}

func (m *memCounterCache) ToggleLiker(ctx context.Context, domain entity.ContentDomain, entityID, actorID string, ttl time.Duration) (bool, error) {
	if m.FailToggle {
		return false, errors.New("toggle failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ckey(domain, entityID)
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]bool)
		m.sets[key] = set
	}
	if set[actorID] {
		delete(set, actorID)
		if m.counts[key] > 0 {
			m.counts[key]--
		}
		return false, nil
	}
	set[actorID] = true
	m.counts[key]++
	return true, nil
}

func (m *memCounterCache) IsLiker(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[ckey(domain, entityID)][actorID], nil
}

func (m *memCounterCache) GetLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, ok := m.counts[ckey(domain, entityID)]
	if !ok {
		return 0, contract.ErrCacheMiss
	}
	return count, nil
}

func (m *memCounterCache) ScanLikeCounts(ctx context.Context, domain entity.ContentDomain, limit int64) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64)
	prefix := string(domain) + "/"
	for key, count := range m.counts {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out[key[len(prefix):]] = count
		}
	}
	return out, nil
}

func (m *memCounterCache) IncrementViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltas[ckey(domain, entityID)]++
	return m.deltas[ckey(domain, entityID)], nil
}

func (m *memCounterCache) GetViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delta, ok := m.deltas[ckey(domain, entityID)]
	if !ok {
		return 0, contract.ErrCacheMiss
	}
	return delta, nil
}

func (m *memCounterCache) DecrementViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string, by int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltas[ckey(domain, entityID)] -= by
	return m.deltas[ckey(domain, entityID)], nil
}

func (m *memCounterCache) DeleteViewDelta(ctx context.Context, domain entity.ContentDomain, entityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deltas, ckey(domain, entityID))
	return nil
}

func (m *memCounterCache) ScanViewDeltas(ctx context.Context, domain entity.ContentDomain, limit int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	prefix := string(domain) + "/"
	for key := range m.deltas {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, key[len(prefix):])
		}
	}
	return out, nil
}

func (m *memCounterCache) MarkViewed(ctx context.Context, domain entity.ContentDomain, entityID, viewer string, cooldown time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ckey(domain, entityID) + "/" + viewer
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *memCounterCache) AcquireWarmLock(ctx context.Context, domain entity.ContentDomain, entityID, token string, lease time.Duration) (bool, error) {
	if m.LockBlocked {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ckey(domain, entityID)
	if m.locks[key] != "" {
		return false, nil
	}
	m.locks[key] = token
	return true, nil
}

func (m *memCounterCache) ReleaseWarmLock(ctx context.Context, domain entity.ContentDomain, entityID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ckey(domain, entityID)
	if m.locks[key] == token {
		delete(m.locks, key)
	}
	return nil
}

// memLikeRepo is an in-memory durable like store.
type memLikeRepo struct {
	mu    sync.Mutex
	likes map[string]map[string]bool

	UpsertCalls int
	DeleteCalls int
	ListCalls   int
}

var _ contract.ILikeRepository = (*memLikeRepo)(nil)

func newMemLikeRepo() *memLikeRepo {
	return &memLikeRepo{likes: make(map[string]map[string]bool)}
}

func (r *memLikeRepo) UpsertLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpsertCalls++
	key := ckey(domain, entityID)
	if r.likes[key] == nil {
		r.likes[key] = make(map[string]bool)
	}
	r.likes[key][actorID] = true
	return nil
}

func (r *memLikeRepo) DeleteLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeleteCalls++
	delete(r.likes[ckey(domain, entityID)], actorID)
	return nil
}

func (r *memLikeRepo) ListLikerIDs(ctx context.Context, domain entity.ContentDomain, entityID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ListCalls++
	var out []string
	for actor := range r.likes[ckey(domain, entityID)] {
		out = append(out, actor)
	}
	return out, nil
}

func (r *memLikeRepo) CountLikes(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.likes[ckey(domain, entityID)])), nil
}

// capturePublisher records published messages.
type capturePublisher struct {
	mu       sync.Mutex
	messages []interface{}
	keys     []string
}

func (p *capturePublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.messages = append(p.messages, message)
	return nil
}

func (p *capturePublisher) Published() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]interface{}, len(p.messages))
	copy(out, p.messages)
	return out
}
