// Package localcache persists a device-scoped copy of the submission
// history in an embedded BadgerDB. It is the fallback read path when the
// remote record store is unreachable.
//
// The whole history lives under a single fixed key as one serialized list,
// read and written as a whole. The cache is not partitioned per
// authenticated user: entries carry a user_id field and callers filter on
// it client-side, so this is an untrusted convenience cache with no
// confidentiality guarantee across users sharing a device.
package localcache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"roadwatch/internal/models"
)

// historyKey is the fixed storage identifier for the serialized entry list.
var historyKey = []byte("roadwatch.history")

// Cache is the local fallback store for history entries.
//
// Concurrent appends from the same process are serialized by the badger
// transaction below, but the read-all/append/write-all shape means two
// processes sharing a directory can still lose one append. Accepted
// limitation, matching the best-effort persistence contract.
type Cache struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens (or creates) the cache at the given directory.
func Open(path string, logger *zap.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// OpenInMemory opens a throwaway in-memory cache. Used by tests.
func OpenInMemory(logger *zap.Logger) (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory cache: %w", err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Append adds one entry to the stored list. It never fails the caller:
// storage errors are logged and the entry is dropped, a documented
// data-loss edge case.
func (c *Cache) Append(entry models.HistoryEntry) {
	err := c.db.Update(func(txn *badger.Txn) error {
		entries := c.load(txn)
		entries = append(entries, entry)

		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to marshal history list: %w", err)
		}
		return txn.Set(historyKey, data)
	})
	if err != nil {
		c.logger.Warn("Dropping history entry, local cache write failed",
			zap.String("filename", entry.Filename), zap.Error(err))
	}
}

// ReadAll returns every stored entry in insertion order. Corrupted stored
// content is treated as no local history: logged, never an error.
func (c *Cache) ReadAll() []models.HistoryEntry {
	var entries []models.HistoryEntry
	err := c.db.View(func(txn *badger.Txn) error {
		entries = c.load(txn)
		return nil
	})
	if err != nil {
		c.logger.Warn("Local cache read failed", zap.Error(err))
		return nil
	}
	return entries
}

// load decodes the stored list inside a transaction. A missing key is an
// empty history; a malformed payload is treated the same way.
func (c *Cache) load(txn *badger.Txn) []models.HistoryEntry {
	item, err := txn.Get(historyKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		c.logger.Warn("Local cache lookup failed", zap.Error(err))
		return nil
	}

	var entries []models.HistoryEntry
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entries)
	})
	if err != nil {
		c.logger.Warn("Local cache content corrupt, treating as empty",
			zap.Error(fmt.Errorf("%w: %v", models.ErrCorrupt, err)))
		return nil
	}
	return entries
}
