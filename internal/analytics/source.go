package analytics

import (
	"context"

	"github.com/sells-group/restock/internal/loader"
	"github.com/sells-group/restock/internal/store"
)

// Source supplies the order set the analytics are computed from.
type Source interface {
	Load(ctx context.Context) (*loader.Dataset, error)
}

// FileSource reads dataset files on every load.
type FileSource struct {
	Paths []string
}

func (s FileSource) Load(ctx context.Context) (*loader.Dataset, error) {
	return loader.LoadFiles(ctx, s.Paths)
}

// LedgerSource reads orders and messages from the order ledger.
type LedgerSource struct {
	Store  store.Store
	Filter store.OrderFilter
}

func (s LedgerSource) Load(ctx context.Context) (*loader.Dataset, error) {
	orders, err := s.Store.ListOrders(ctx, s.Filter)
	if err != nil {
		return nil, err
	}
	messages, err := s.Store.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	return &loader.Dataset{Orders: orders, Messages: messages}, nil
}

// StaticSource serves a fixed dataset.
type StaticSource struct {
	Dataset *loader.Dataset
}

func (s StaticSource) Load(context.Context) (*loader.Dataset, error) {
	if s.Dataset == nil {
		return &loader.Dataset{}, nil
	}
	return s.Dataset, nil
}
