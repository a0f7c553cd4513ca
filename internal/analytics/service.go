// Package analytics serves profiles, journey views and inventory for an order
// source, caching each result under the fingerprint of the order set.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/restock/internal/cache"
	"github.com/sells-group/restock/internal/inventory"
	"github.com/sells-group/restock/internal/journey"
	"github.com/sells-group/restock/internal/loader"
	"github.com/sells-group/restock/internal/metrics"
	"github.com/sells-group/restock/internal/model"
	"github.com/sells-group/restock/internal/resolve"
	"github.com/sells-group/restock/internal/store"
	"github.com/sells-group/restock/internal/velocity"
)

var (
	// ErrProfileNotFound is returned by Similar for an unknown profile key.
	ErrProfileNotFound = eris.New("analytics: profile not found")
	// ErrReadOnly is returned by Import when the service has no ledger.
	ErrReadOnly = eris.New("analytics: no ledger configured")
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	Cache               cache.Cache
	Metrics             *metrics.Registry
	Ledger              store.Store
	SimilarityThreshold float64
	MaxSimilar          int
}

// Service computes analytics views over a Source.
type Service struct {
	source     Source
	cache      cache.Cache
	metrics    *metrics.Registry
	ledger     store.Store
	threshold  float64
	maxSimilar int
	log        *zap.Logger

	mu          sync.Mutex
	fingerprint string
}

// SimilarProfile is one near-duplicate candidate for a profile.
type SimilarProfile struct {
	Key      string                    `json:"key"`
	Distance float64                   `json:"distance"`
	Profile  model.ItemVelocityProfile `json:"profile"`
}

// New creates a Service reading from source.
func New(source Source, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = resolve.DefaultThreshold
	}
	return &Service{
		source:     source,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		ledger:     opts.Ledger,
		threshold:  opts.SimilarityThreshold,
		maxSimilar: opts.MaxSimilar,
		log:        zap.L().With(zap.String("component", "analytics")),
	}
}

// Metrics returns the registry the service reports to.
func (s *Service) Metrics() *metrics.Registry { return s.metrics }

// Profiles returns every velocity profile, highest burn rate first.
func (s *Service) Profiles(ctx context.Context) ([]model.ItemVelocityProfile, error) {
	return compute(ctx, s, "profiles", "", func(ds *loader.Dataset) []model.ItemVelocityProfile {
		return velocity.Sorted(velocity.Build(ds.Orders))
	})
}

// Similar returns the profiles whose keys are within the similarity
// threshold of key, closest first. key may be a normalized key or a raw
// product name.
func (s *Service) Similar(ctx context.Context, key string) ([]SimilarProfile, error) {
	profiles, err := s.Profiles(ctx)
	if err != nil {
		return nil, err
	}

	universe := make(map[string]model.ItemVelocityProfile, len(profiles))
	for _, p := range profiles {
		universe[p.NormalizedName] = p
	}
	if _, ok := universe[key]; !ok {
		key = resolve.Normalize(key)
		if _, ok := universe[key]; !ok {
			return nil, ErrProfileNotFound
		}
	}

	matches := resolve.RankSimilar(key, universe, s.threshold)
	if s.maxSimilar > 0 && len(matches) > s.maxSimilar {
		matches = matches[:s.maxSimilar]
	}
	out := make([]SimilarProfile, len(matches))
	for i, m := range matches {
		out[i] = SimilarProfile{Key: m.Key, Distance: m.Distance, Profile: m.Value}
	}
	return out, nil
}

// Journey returns the requested journey view. query narrows only the
// chronological view.
func (s *Service) Journey(ctx context.Context, view journey.View, query string) ([]*model.JourneyNode, error) {
	if view != journey.ViewChronological {
		query = ""
	}
	return compute(ctx, s, "journey-"+string(view), query, func(ds *loader.Dataset) []*model.JourneyNode {
		return journey.BuildView(view, ds.Orders, ds.Messages, query)
	})
}

// Inventory returns the inventory ledger in first-seen order.
func (s *Service) Inventory(ctx context.Context) ([]model.InventoryItem, error) {
	return compute(ctx, s, "inventory", "", func(ds *loader.Dataset) []model.InventoryItem {
		return inventory.AggregateWithThreshold(ds.Orders, s.threshold)
	})
}

// SyncRecords returns the inventory mapped onto downstream sync records.
func (s *Service) SyncRecords(ctx context.Context) ([]model.SyncRecord, error) {
	items, err := s.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.SyncRecords(items), nil
}

// Import writes a dataset to the ledger.
func (s *Service) Import(ctx context.Context, source string, ds *loader.Dataset) (*store.Batch, error) {
	if s.ledger == nil {
		return nil, ErrReadOnly
	}
	batch, err := s.ledger.Import(ctx, source, ds.Orders, ds.Messages)
	if err != nil {
		return nil, eris.Wrap(err, "analytics: import")
	}
	s.metrics.Imported.Add(float64(batch.OrderCount))
	s.log.Info("imported orders",
		zap.String("batch_id", batch.ID),
		zap.String("source", source),
		zap.Int("orders", batch.OrderCount),
		zap.Int("messages", batch.MessageCount),
	)
	return batch, nil
}

// load reads the source and fingerprints it. When the fingerprint changes,
// cache entries for older order sets are dropped.
func (s *Service) load(ctx context.Context) (*loader.Dataset, string, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, "", eris.Wrap(err, "analytics: load orders")
	}
	fp := cache.Fingerprint(ds.Orders, ds.Messages)
	s.metrics.OrdersLoaded.Set(float64(len(ds.Orders)))

	s.mu.Lock()
	changed := fp != s.fingerprint
	s.fingerprint = fp
	s.mu.Unlock()

	if changed {
		if n, err := s.cache.Retain(fp); err != nil {
			s.log.Warn("cache retain failed", zap.Error(err))
		} else if n > 0 {
			s.log.Debug("order set changed", zap.String("fingerprint", fp), zap.Int("dropped", n))
		}
	}
	return ds, fp, nil
}

// compute returns the cached result for name and query, building and
// caching it on a miss. Cache failures are logged, never returned.
func compute[T any](ctx context.Context, s *Service, name, query string, build func(*loader.Dataset) T) (T, error) {
	var zero T
	ds, fp, err := s.load(ctx)
	if err != nil {
		return zero, err
	}
	key := cache.Key(fp, name, query)

	var out T
	hit, err := s.cache.Get(key, &out)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		s.metrics.CacheHits.Inc()
		return out, nil
	}
	s.metrics.CacheMisses.Inc()

	start := time.Now()
	out = build(ds)
	s.metrics.Builds.WithLabelValues(name).Inc()
	s.metrics.BuildDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err := s.cache.Put(key, out); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}
