package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/restock/internal/analytics"
	"github.com/sells-group/restock/internal/cache"
	"github.com/sells-group/restock/internal/metrics"
	"github.com/sells-group/restock/internal/store"
)

// appEnv holds the ledger, the result cache and the analytics service used
// by the analytics commands and the server.
type appEnv struct {
	Store   store.Store // nil when reading --file inputs
	Cache   cache.Cache
	Service *analytics.Service
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens and migrates the order ledger.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initCache() (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return cache.Nop{}, nil
	}
	c, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// initEnv builds the analytics service. With --file inputs the service reads
// those files and has no ledger; otherwise it reads and imports into the
// configured ledger. Callers should defer env.Close().
func initEnv(ctx context.Context, reg *metrics.Registry) (*appEnv, error) {
	env := &appEnv{}

	c, err := initCache()
	if err != nil {
		return nil, err
	}
	env.Cache = c

	var source analytics.Source
	if len(inputFiles) > 0 {
		source = analytics.FileSource{Paths: inputFiles}
	} else {
		st, err := initStore(ctx)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Store = st
		source = analytics.LedgerSource{Store: st}
	}

	env.Service = analytics.New(source, analytics.Options{
		Cache:               env.Cache,
		Metrics:             reg,
		Ledger:              env.Store,
		SimilarityThreshold: cfg.Analytics.SimilarityThreshold,
		MaxSimilar:          cfg.Analytics.MaxSimilar,
	})

	zap.L().Debug("analytics environment ready",
		zap.Int("files", len(inputFiles)),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return env, nil
}
