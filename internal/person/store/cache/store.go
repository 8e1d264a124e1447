package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"people/internal/person/metrics"
	"people/internal/person/models"
	"people/internal/person/query"
	"people/pkg/platform/circuit"
	"people/pkg/platform/sentinel"
)

// Store is the person store being decorated.
type Store interface {
	Create(ctx context.Context, p models.Person) (models.Person, error)
	Update(ctx context.Context, p models.Person) (models.Person, error)
	FindByID(ctx context.Context, id int64) (models.Person, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, p query.Predicate) ([]models.Person, error)
	FindPage(ctx context.Context, p query.Predicate, pageable models.Pageable) (models.Page, error)
}

// Cache holds people by id.
type Cache interface {
	Get(ctx context.Context, id int64) (models.Person, error)
	Set(ctx context.Context, p models.Person) error
	Invalidate(ctx context.Context, id int64) error
}

// generationStripes spreads ids over a fixed set of write counters.
const generationStripes = 256

// CachedStore reads FindByID through a cache and invalidates on writes.
// Criteria queries always go to the underlying store. Reads skip the cache
// while its circuit is open.
//
// A read that loses a race with a write in this process never leaves its
// stale row cached: every invalidation bumps a per-id generation and the
// reader only keeps what it stored if the generation did not move. Writes
// made by other instances are bounded by the cache TTL.
type CachedStore struct {
	next        Store
	cache       Cache
	breaker     *circuit.Breaker
	logger      *slog.Logger
	metrics     *metrics.Metrics
	generations [generationStripes]atomic.Uint64
}

type Option func(*CachedStore)

func WithLogger(logger *slog.Logger) Option {
	return func(s *CachedStore) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *CachedStore) {
		s.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *CachedStore) {
		s.breaker = b
	}
}

func NewCachedStore(next Store, cache Cache, opts ...Option) *CachedStore {
	breaker := circuit.New("person-cache",
		circuit.WithFailureThreshold(5),
		circuit.WithSuccessThreshold(2),
		circuit.WithCooldown(10*time.Second),
	)
	s := &CachedStore{next: next, cache: cache, breaker: breaker, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CachedStore) Create(ctx context.Context, p models.Person) (models.Person, error) {
	return s.next.Create(ctx, p)
}

func (s *CachedStore) Update(ctx context.Context, p models.Person) (models.Person, error) {
	updated, err := s.next.Update(ctx, p)
	if err != nil {
		return models.Person{}, err
	}
	s.invalidate(ctx, p.ID)
	return updated, nil
}

// FindByID serves from the cache when possible. Cache failures are logged
// and the lookup falls back to the store.
func (s *CachedStore) FindByID(ctx context.Context, id int64) (models.Person, error) {
	if cached, ok := s.read(ctx, id); ok {
		s.metrics.RecordCacheHit()
		return cached, nil
	}
	s.metrics.RecordCacheMiss()

	gen := s.generation(id).Load()
	p, err := s.next.FindByID(ctx, id)
	if err != nil {
		return models.Person{}, err
	}
	s.fill(ctx, p, gen)
	return p, nil
}

// fill caches p unless a write to the same id was invalidated since gen
// was read. A write landing during Set is caught by the second check.
func (s *CachedStore) fill(ctx context.Context, p models.Person, gen uint64) {
	counter := s.generation(p.ID)
	if counter.Load() != gen || !s.breaker.Allow() {
		return
	}
	err := s.cache.Set(ctx, p)
	s.record(ctx, "write", p.ID, err)
	if err == nil && counter.Load() != gen {
		s.record(ctx, "invalidation", p.ID, s.cache.Invalidate(ctx, p.ID))
	}
}

func (s *CachedStore) generation(id int64) *atomic.Uint64 {
	return &s.generations[uint64(id)%generationStripes]
}

func (s *CachedStore) read(ctx context.Context, id int64) (models.Person, bool) {
	if !s.breaker.Allow() {
		return models.Person{}, false
	}
	cached, err := s.cache.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.record(ctx, "read", id, nil)
		return models.Person{}, false
	}
	if usable := s.record(ctx, "read", id, err); err != nil || !usable {
		return models.Person{}, false
	}
	return cached, true
}

// record feeds the outcome of a cache call to the breaker and reports
// whether cache results may be used.
func (s *CachedStore) record(ctx context.Context, op string, id int64, err error) bool {
	if err == nil {
		usePrimary, change := s.breaker.RecordSuccess()
		if change.Closed {
			s.logger.InfoContext(ctx, "person cache circuit closed")
		}
		return usePrimary
	}

	_, change := s.breaker.RecordFailure()
	s.logger.WarnContext(ctx, "person cache "+op+" failed", "id", id, "error", err)
	if change.Opened {
		s.logger.WarnContext(ctx, "person cache circuit opened")
	}
	return false
}

func (s *CachedStore) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) Find(ctx context.Context, p query.Predicate) ([]models.Person, error) {
	return s.next.Find(ctx, p)
}

func (s *CachedStore) FindPage(ctx context.Context, p query.Predicate, pageable models.Pageable) (models.Page, error) {
	return s.next.FindPage(ctx, p, pageable)
}

func (s *CachedStore) invalidate(ctx context.Context, id int64) {
	s.generation(id).Add(1)
	s.record(ctx, "invalidation", id, s.cache.Invalidate(ctx, id))
}
