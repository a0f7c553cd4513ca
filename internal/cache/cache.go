// Package cache stores computed analytics results keyed by the fingerprint of
// the order set they were computed from.
package cache

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Cache stores JSON-encoded results.
type Cache interface {
	// Get decodes the value for key into dst. It reports false when the key
	// is absent.
	Get(key string, dst any) (bool, error)
	Put(key string, v any) error
	// Retain deletes every entry not belonging to fingerprint.
	Retain(fingerprint string) (int, error)
	Close() error
}

// PebbleCache implements Cache on a local Pebble database.
type PebbleCache struct {
	db  *pebble.DB
	log *zap.Logger
}

// Open opens (creating if needed) a Pebble cache in dir.
func Open(dir string) (*PebbleCache, error) {
	opts := &pebble.Options{
		MemTableSize: 16 << 20,
	}
	db, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, eris.Wrapf(err, "cache: open %s", dir)
	}
	return &PebbleCache{
		db:  db,
		log: zap.L().With(zap.String("component", "cache")),
	}, nil
}

func (c *PebbleCache) Get(key string, dst any) (bool, error) {
	v, closer, err := c.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "cache: get %s", key)
	}
	defer closer.Close() //nolint:errcheck

	if err := json.Unmarshal(v, dst); err != nil {
		return false, eris.Wrapf(err, "cache: decode %s", key)
	}
	return true, nil
}

func (c *PebbleCache) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cache: encode %s", key)
	}
	return eris.Wrapf(c.db.Set([]byte(key), data, pebble.NoSync), "cache: set %s", key)
}

func (c *PebbleCache) Retain(fingerprint string) (int, error) {
	prefix := []byte(fingerprint + "/")

	it, err := c.db.NewIter(nil)
	if err != nil {
		return 0, eris.Wrap(err, "cache: iterate")
	}
	var stale [][]byte
	for it.First(); it.Valid(); it.Next() {
		if !bytes.HasPrefix(it.Key(), prefix) {
			stale = append(stale, append([]byte(nil), it.Key()...))
		}
	}
	if err := it.Close(); err != nil {
		return 0, eris.Wrap(err, "cache: close iterator")
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := c.db.NewBatch()
	defer wb.Close() //nolint:errcheck
	for _, k := range stale {
		if err := wb.Delete(k, nil); err != nil {
			return 0, eris.Wrap(err, "cache: batch delete")
		}
	}
	if err := wb.Commit(pebble.NoSync); err != nil {
		return 0, eris.Wrap(err, "cache: commit delete")
	}
	c.log.Debug("dropped stale entries", zap.Int("count", len(stale)))
	return len(stale), nil
}

func (c *PebbleCache) Close() error {
	return eris.Wrap(c.db.Close(), "cache: close")
}

// Nop is a Cache that stores nothing.
type Nop struct{}

func (Nop) Get(string, any) (bool, error) { return false, nil }
func (Nop) Put(string, any) error         { return nil }
func (Nop) Retain(string) (int, error)    { return 0, nil }
func (Nop) Close() error                  { return nil }
