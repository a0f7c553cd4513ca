package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/restock/internal/model"
)

// sqliteTimeLayout keeps order_at lexically comparable.
const sqliteTimeLayout = "2006-01-02T15:04:05Z"

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS import_batches (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	order_count   INTEGER NOT NULL DEFAULT 0,
	message_count INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS orders (
	seq               INTEGER PRIMARY KEY AUTOINCREMENT,
	id                TEXT NOT NULL UNIQUE,
	source_message_id TEXT NOT NULL DEFAULT '',
	supplier          TEXT NOT NULL DEFAULT '',
	order_at          TEXT,
	payload           TEXT NOT NULL,
	batch_id          TEXT NOT NULL REFERENCES import_batches(id),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	payload    TEXT NOT NULL,
	batch_id   TEXT NOT NULL REFERENCES import_batches(id),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_orders_supplier ON orders(supplier COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_orders_order_at ON orders(order_at);
CREATE INDEX IF NOT EXISTS idx_orders_source_message_id ON orders(source_message_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Import(ctx context.Context, source string, orders []model.ExtractedOrder, messages []model.RawEmail) (*Batch, error) {
	batch := &Batch{
		ID:           uuid.New().String(),
		Source:       source,
		OrderCount:   len(orders),
		MessageCount: len(messages),
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin import")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO import_batches (id, source, order_count, message_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.Source, batch.OrderCount, batch.MessageCount, batch.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert batch")
	}

	for _, o := range orders {
		payload, err := json.Marshal(o)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: marshal order %s", o.ID)
		}
		var orderAt any
		if t := orderTime(o); t != nil {
			orderAt = t.Format(sqliteTimeLayout)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO orders (id, source_message_id, supplier, order_at, payload, batch_id, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   source_message_id = excluded.source_message_id,
			   supplier = excluded.supplier,
			   order_at = excluded.order_at,
			   payload = excluded.payload,
			   batch_id = excluded.batch_id,
			   updated_at = excluded.updated_at`,
			o.ID, o.SourceMessageID, o.Supplier, orderAt, string(payload), batch.ID, batch.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: upsert order %s", o.ID)
		}
	}

	for _, m := range messages {
		payload, err := json.Marshal(m)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: marshal message %s", m.ID)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, payload, batch_id, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   payload = excluded.payload,
			   batch_id = excluded.batch_id,
			   updated_at = excluded.updated_at`,
			m.ID, string(payload), batch.ID, batch.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: upsert message %s", m.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit import")
	}
	return batch, nil
}

func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*model.ExtractedOrder, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM orders WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get order %s", id)
	}
	var o model.ExtractedOrder
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal order %s", id)
	}
	return &o, nil
}

func (s *SQLiteStore) ListOrders(ctx context.Context, filter OrderFilter) ([]model.ExtractedOrder, error) {
	query := `SELECT payload FROM orders WHERE 1=1`
	var args []any

	if filter.Supplier != "" {
		query += ` AND lower(supplier) = ?`
		args = append(args, strings.ToLower(filter.Supplier))
	}
	if !filter.Since.IsZero() {
		query += ` AND order_at >= ?`
		args = append(args, filter.Since.UTC().Format(sqliteTimeLayout))
	}
	query += ` ORDER BY seq`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list orders")
	}
	defer rows.Close() //nolint:errcheck

	var orders []model.ExtractedOrder
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan order")
		}
		var o model.ExtractedOrder
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal order")
		}
		orders = append(orders, o)
	}
	return orders, eris.Wrap(rows.Err(), "sqlite: list orders iterate")
}

func (s *SQLiteStore) ListMessages(ctx context.Context) ([]model.RawEmail, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM messages ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list messages")
	}
	defer rows.Close() //nolint:errcheck

	var messages []model.RawEmail
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan message")
		}
		var m model.RawEmail
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal message")
		}
		messages = append(messages, m)
	}
	return messages, eris.Wrap(rows.Err(), "sqlite: list messages iterate")
}

func (s *SQLiteStore) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, order_count, message_count, created_at FROM import_batches
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list batches")
	}
	defer rows.Close() //nolint:errcheck

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.Source, &b.OrderCount, &b.MessageCount, &b.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan batch")
		}
		batches = append(batches, b)
	}
	return batches, eris.Wrap(rows.Err(), "sqlite: list batches iterate")
}
