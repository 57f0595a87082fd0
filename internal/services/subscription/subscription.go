// Package services holds the subscription controller: it owns the current
// snapshot of records, runs the derived-view and import/export engines over
// it and pushes fresh snapshots to live subscribers after every change.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sibintb/submanager/internal/lib/dates"
	"github.com/sibintb/submanager/internal/lib/sl"
	"github.com/sibintb/submanager/internal/models"
	"github.com/sibintb/submanager/internal/sheets"
	"github.com/sibintb/submanager/internal/storage"
)

// SnapshotKey is the cache key of the full record list.
const SnapshotKey = "subscriptions:snapshot"

// bulkDeleteLimit bounds concurrent deletes of RemoveMany.
const bulkDeleteLimit = 4

var (
	// ErrNothingToUpdate is returned for a patch without fields.
	ErrNothingToUpdate = errors.New("nothing to update")
	// ErrNoIDs is returned by RemoveMany for an empty selection.
	ErrNoIDs = errors.New("no ids selected")
)

// SubscriptionRepository persists records.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, patch models.SubscriptionPatch) (models.Subscription, error)
	RemoveSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// Cache keeps the snapshot between requests.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SubscriptionService implements the record operations of the dashboard.
type SubscriptionService struct {
	repo     SubscriptionRepository
	cache    Cache
	sheet    sheets.SubscriptionWriter
	log      *slog.Logger
	clock    dates.Clock
	maxSize  int64
	cacheTTL time.Duration
	metrics  *Metrics
	hub      *hub

	// gen counts changes. A snapshot read under an older generation is
	// never written to the cache.
	mu  sync.Mutex
	gen uint64
}

// Option customises a SubscriptionService.
type Option func(*SubscriptionService)

// WithClock replaces the wall clock used as "today".
func WithClock(c dates.Clock) Option {
	return func(s *SubscriptionService) { s.clock = c }
}

// WithImportMaxSize sets the largest accepted import file.
func WithImportMaxSize(n int64) Option {
	return func(s *SubscriptionService) { s.maxSize = n }
}

// WithCacheTTL sets the lifetime of the cached snapshot.
func WithCacheTTL(d time.Duration) Option {
	return func(s *SubscriptionService) { s.cacheTTL = d }
}

// WithMetrics records import and mutation counters in m.
func WithMetrics(m *Metrics) Option {
	return func(s *SubscriptionService) { s.metrics = m }
}

// NewSubscriptionService builds the service. cache and sheet may be nil.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, sheet sheets.SubscriptionWriter, log *slog.Logger, opts ...Option) *SubscriptionService {
	s := &SubscriptionService{
		repo:     repo,
		cache:    cache,
		sheet:    sheet,
		log:      log,
		clock:    time.Now,
		cacheTTL: 5 * time.Minute,
		hub:      newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Today is the instant the engines treat as now.
func (s *SubscriptionService) Today() time.Time {
	return s.clock()
}

// Snapshot returns every record in insertion order, from the cache when
// possible. Cache failures are logged and the repository is used instead.
func (s *SubscriptionService) Snapshot(ctx context.Context) ([]models.Subscription, error) {
	const op = "services.subscription.Snapshot"

	if s.cache != nil {
		var cached []models.Subscription
		found, err := s.cache.Get(ctx, SnapshotKey, &cached)
		if err != nil {
			s.log.Warn("failed to read snapshot from cache", sl.Err(err))
		}
		if found {
			if cached == nil {
				cached = []models.Subscription{}
			}
			return cached, nil
		}
	}

	gen := s.generation()
	list, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.storeSnapshot(ctx, gen, list)
	return list, nil
}

func (s *SubscriptionService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// storeSnapshot caches list unless a change happened after it was read.
func (s *SubscriptionService) storeSnapshot(ctx context.Context, gen uint64, list []models.Subscription) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if err := s.cache.Set(ctx, SnapshotKey, list, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache snapshot", slog.String("key", SnapshotKey), sl.Err(err))
	}
}

// changed drops the cached snapshot, reloads it and publishes it to live
// subscribers.
func (s *SubscriptionService) changed(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, SnapshotKey); err != nil {
			s.log.Warn("failed to invalidate snapshot", slog.String("key", SnapshotKey), sl.Err(err))
		}
	}
	s.mu.Unlock()

	if !s.hub.active() {
		return
	}
	list, err := s.repo.ListSubscriptions(context.WithoutCancel(ctx))
	if err != nil {
		s.log.Error("failed to reload snapshot", sl.Err(err))
		return
	}
	s.storeSnapshot(ctx, gen, list)
	s.hub.publish(gen, list)
}

// Create stores a new record from the validated form.
func (s *SubscriptionService) Create(ctx context.Context, req models.DummySubscription) (models.Subscription, error) {
	const op = "services.subscription.Create"

	sub, err := s.repo.CreateSubscription(ctx, req.ToSubscription())
	if err != nil {
		s.metrics.mutations.WithLabelValues("create", "error").Inc()
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.mutations.WithLabelValues("create", "ok").Inc()
	s.log.Info("created subscription", slog.String("id", sub.ID))

	s.changed(ctx)
	return sub, nil
}

// Update applies patch to the record with id.
func (s *SubscriptionService) Update(ctx context.Context, id string, patch models.SubscriptionPatch) (models.Subscription, error) {
	const op = "services.subscription.Update"

	if patch.IsEmpty() {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrNothingToUpdate)
	}

	sub, err := s.repo.UpdateSubscription(ctx, id, patch)
	if err != nil {
		s.metrics.mutations.WithLabelValues("update", "error").Inc()
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.mutations.WithLabelValues("update", "ok").Inc()
	s.log.Info("updated subscription", slog.String("id", id))

	s.changed(ctx)
	return sub, nil
}

// Remove deletes the record with id.
func (s *SubscriptionService) Remove(ctx context.Context, id string) error {
	const op = "services.subscription.Remove"

	if err := s.repo.RemoveSubscription(ctx, id); err != nil {
		s.metrics.mutations.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.mutations.WithLabelValues("remove", "ok").Inc()
	s.log.Info("removed subscription", slog.String("id", id))

	s.changed(ctx)
	return nil
}

// RemoveMany deletes the selected records concurrently. Records already gone
// count as deleted. The first other failure is returned once every delete has
// finished; deletes that succeeded are not rolled back.
func (s *SubscriptionService) RemoveMany(ctx context.Context, ids []string) (int, error) {
	const op = "services.subscription.RemoveMany"

	ids = unique(ids)
	if len(ids) == 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrNoIDs)
	}

	var g errgroup.Group
	g.SetLimit(bulkDeleteLimit)
	for _, id := range ids {
		g.Go(func() error {
			err := s.repo.RemoveSubscription(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("remove %s: %w", id, err)
			}
			return nil
		})
	}
	err := g.Wait()

	s.changed(ctx)
	if err != nil {
		s.metrics.mutations.WithLabelValues("remove_many", "error").Inc()
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.mutations.WithLabelValues("remove_many", "ok").Inc()
	s.log.Info("removed subscriptions", slog.Int("count", len(ids)))
	return len(ids), nil
}

func unique(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// Subscribe streams full snapshots: the current one first, then one after
// every successful change. A slow reader only sees the latest snapshot. A
// change published while the first snapshot loads replaces it. The channel
// is closed when ctx ends.
func (s *SubscriptionService) Subscribe(ctx context.Context) <-chan []models.Subscription {
	ch := s.hub.subscribe(ctx)
	list, err := s.Snapshot(ctx)
	if err != nil {
		s.log.Error("failed to load initial snapshot", sl.Err(err))
		return ch
	}
	s.hub.offer(ch, list)
	return ch
}
