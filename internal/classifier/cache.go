package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const cacheKeyPrefix = "clf:"

// Cache stores classifier responses in Badger with a TTL.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens a response cache at dir. An empty dir keeps the cache
// in memory for the life of the process.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open classifier cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Shutdown implements do.Shutdowner.
func (c *Cache) Shutdown() error {
	return c.Close()
}

// Get returns the cached response for key. ok is false on a miss.
func (c *Cache) Get(key []byte) (value string, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

// Set stores value under key with the cache TTL.
func (c *Cache) Set(key []byte, value string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, []byte(value))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// cacheKey is derived from everything that determines the response.
func cacheKey(prompt string, chunk []string) []byte {
	h := sha256.New()
	h.Write([]byte(prompt))
	for _, name := range chunk {
		h.Write([]byte{0})
		h.Write([]byte(name))
	}
	return []byte(cacheKeyPrefix + hex.EncodeToString(h.Sum(nil)))
}

// Cached serves repeated identical calls from a Cache. Only successful,
// non-empty responses are stored; cache faults fall through to the
// wrapped classifier.
type Cached struct {
	next   Classifier
	cache  *Cache
	logger *slog.Logger
}

// NewCached wraps next with cache.
func NewCached(next Classifier, cache *Cache, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, cache: cache, logger: logger}
}

// Classify returns a cached response when one exists.
func (c *Cached) Classify(ctx context.Context, prompt string, chunk []string) (string, error) {
	key := cacheKey(prompt, chunk)

	if v, ok, err := c.cache.Get(key); err != nil {
		c.logger.Warn("classifier cache read failed", "error", err)
	} else if ok {
		c.logger.Debug("classifier cache hit", "names", len(chunk))
		return v, nil
	}

	resp, err := c.next.Classify(ctx, prompt, chunk)
	if err != nil {
		return "", err
	}

	if resp != "" {
		if err := c.cache.Set(key, resp); err != nil {
			c.logger.Warn("classifier cache write failed", "error", err)
		}
	}
	return resp, nil
}
