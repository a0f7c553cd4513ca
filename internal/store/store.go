// Package store persists the order ledger: extracted orders, their source
// messages, and the import batches that brought them in.
package store

import (
	"context"
	"time"

	"github.com/sells-group/restock/internal/model"
)

// OrderFilter specifies criteria for listing orders.
type OrderFilter struct {
	Supplier string    `json:"supplier,omitempty"`
	Since    time.Time `json:"since,omitempty"`
	// Limit caps the result; zero or less returns every matching order.
	Limit int `json:"limit,omitempty"`
}

// Batch records one import.
type Batch struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	OrderCount   int       `json:"orderCount"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store defines the persistence interface for the order ledger.
type Store interface {
	// Import upserts orders and messages by id in one transaction and records
	// the batch.
	Import(ctx context.Context, source string, orders []model.ExtractedOrder, messages []model.RawEmail) (*Batch, error)

	// GetOrder returns nil, nil when the order does not exist.
	GetOrder(ctx context.Context, id string) (*model.ExtractedOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]model.ExtractedOrder, error)
	ListMessages(ctx context.Context) ([]model.RawEmail, error)
	ListBatches(ctx context.Context, limit int) ([]Batch, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// orderTime is the value stored in the order_at column: nil when the order
// date does not parse.
func orderTime(o model.ExtractedOrder) *time.Time {
	t := o.Date()
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
