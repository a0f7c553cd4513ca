package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/restock/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock pools satisfy it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
	retry   RetryConfig
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	retry := DefaultRetryConfig()
	_, err = retryVal(ctx, retry, "ping", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	})
	if err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, retry: retry}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS import_batches (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source        TEXT NOT NULL,
	order_count   INTEGER NOT NULL DEFAULT 0,
	message_count INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	seq               BIGSERIAL PRIMARY KEY,
	id                TEXT NOT NULL UNIQUE,
	source_message_id TEXT NOT NULL DEFAULT '',
	supplier          TEXT NOT NULL DEFAULT '',
	order_at          TIMESTAMPTZ,
	payload           JSONB NOT NULL,
	batch_id          TEXT NOT NULL REFERENCES import_batches(id),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	payload    JSONB NOT NULL,
	batch_id   TEXT NOT NULL REFERENCES import_batches(id),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_supplier ON orders(lower(supplier));
CREATE INDEX IF NOT EXISTS idx_orders_order_at ON orders(order_at);
CREATE INDEX IF NOT EXISTS idx_orders_source_message_id ON orders(source_message_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Import retries the whole transaction when Postgres aborts it transiently.
func (s *PostgresStore) Import(ctx context.Context, source string, orders []model.ExtractedOrder, messages []model.RawEmail) (*Batch, error) {
	return retryVal(ctx, s.retry, "import", func(ctx context.Context) (*Batch, error) {
		return s.importOnce(ctx, source, orders, messages)
	})
}

func (s *PostgresStore) importOnce(ctx context.Context, source string, orders []model.ExtractedOrder, messages []model.RawEmail) (*Batch, error) {
	batch := &Batch{
		ID:           uuid.New().String(),
		Source:       source,
		OrderCount:   len(orders),
		MessageCount: len(messages),
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin import")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO import_batches (id, source, order_count, message_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		batch.ID, batch.Source, batch.OrderCount, batch.MessageCount, batch.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert batch")
	}

	for _, o := range orders {
		payload, err := json.Marshal(o)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: marshal order %s", o.ID)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO orders (id, source_message_id, supplier, order_at, payload, batch_id, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
			   source_message_id = EXCLUDED.source_message_id,
			   supplier = EXCLUDED.supplier,
			   order_at = EXCLUDED.order_at,
			   payload = EXCLUDED.payload,
			   batch_id = EXCLUDED.batch_id,
			   updated_at = EXCLUDED.updated_at`,
			o.ID, o.SourceMessageID, o.Supplier, orderTime(o), payload, batch.ID, batch.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: upsert order %s", o.ID)
		}
	}

	for _, m := range messages {
		payload, err := json.Marshal(m)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: marshal message %s", m.ID)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO messages (id, payload, batch_id, updated_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET
			   payload = EXCLUDED.payload,
			   batch_id = EXCLUDED.batch_id,
			   updated_at = EXCLUDED.updated_at`,
			m.ID, payload, batch.ID, batch.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: upsert message %s", m.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit import")
	}
	return batch, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*model.ExtractedOrder, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM orders WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get order %s", id)
	}
	var o model.ExtractedOrder
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal order %s", id)
	}
	return &o, nil
}

func (s *PostgresStore) ListOrders(ctx context.Context, filter OrderFilter) ([]model.ExtractedOrder, error) {
	query := `SELECT payload FROM orders WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Supplier != "" {
		query += fmt.Sprintf(` AND lower(supplier) = lower($%d)`, argIdx)
		args = append(args, filter.Supplier)
		argIdx++
	}
	if !filter.Since.IsZero() {
		query += fmt.Sprintf(` AND order_at >= $%d`, argIdx)
		args = append(args, filter.Since.UTC())
		argIdx++
	}
	query += ` ORDER BY seq`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list orders")
	}
	defer rows.Close()

	var orders []model.ExtractedOrder
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan order")
		}
		var o model.ExtractedOrder
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal order")
		}
		orders = append(orders, o)
	}
	return orders, eris.Wrap(rows.Err(), "postgres: list orders iterate")
}

func (s *PostgresStore) ListMessages(ctx context.Context) ([]model.RawEmail, error) {
	rows, err := s.pool.Query(ctx, `SELECT payload FROM messages ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list messages")
	}
	defer rows.Close()

	var messages []model.RawEmail
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan message")
		}
		var m model.RawEmail
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal message")
		}
		messages = append(messages, m)
	}
	return messages, eris.Wrap(rows.Err(), "postgres: list messages iterate")
}

func (s *PostgresStore) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, order_count, message_count, created_at FROM import_batches ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list batches")
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Source, &b.OrderCount, &b.MessageCount, &b.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan batch")
		}
		batches = append(batches, b)
	}
	return batches, eris.Wrap(rows.Err(), "postgres: list batches iterate")
}
