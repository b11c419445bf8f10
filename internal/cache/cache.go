// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/mealworks/lookup-engine/internal/merge"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// SchemaVersion stamps every stored entry. Bump it whenever the candidate
// payload shape changes; entries stamped with any other version are treated
// as misses and evicted on read.
const SchemaVersion = 2

// DefaultTTL applies when configuration leaves the cache TTL unset.
const DefaultTTL = 24 * time.Hour

// Cache layers TTL and schema-version policy over a Store. Safe for
// concurrent use.
type Cache struct {
	mu    sync.Mutex
	store *Store
	ttl   time.Duration
	now   func() time.Time
	log   *zap.SugaredLogger
}

// New wraps store with the given TTL. A non-positive ttl falls back to
// DefaultTTL. Entries written under an older schema version are purged at
// open, best effort.
func New(store *Store, ttl time.Duration, log *zap.SugaredLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if n, err := store.DeleteByVersionMismatch(context.Background(), SchemaVersion); err != nil {
		log.Warnw("cache version purge failed", "error", err)
	} else if n > 0 {
		log.Infow("purged outdated cache entries", "count", n)
	}
	return &Cache{store: store, ttl: ttl, now: time.Now, log: log}
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock(store *Store, ttl time.Duration, log *zap.SugaredLogger, now func() time.Time) *Cache {
	c := New(store, ttl, log)
	c.now = now
	return c
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Key builds the cache key for one provider request. Inputs are normalized
// so equivalent requests share an entry: barcodes go through the same
// normalization the merger uses for identity (digits only, leading zeros
// stripped), text queries are lowercased with whitespace collapsed.
func Key(providerID string, rt types.RequestType, input string) string {
	return providerID + "|" + string(rt) + "|" + normalizeInput(rt, input)
}

func normalizeInput(rt types.RequestType, input string) string {
	if rt == types.RequestBarcodeLookup {
		return merge.NormalizeBarcode(input)
	}
	lower := strings.ToLower(strings.TrimSpace(input))
	return strings.Join(strings.FieldsFunc(lower, unicode.IsSpace), " ")
}

// Get returns the cached candidates for key, or (nil, false) on a miss.
// Entries that are expired, stamped with a different schema version, or
// whose payload no longer decodes are evicted and reported as misses.
func (c *Cache) Get(key string) ([]types.RemoteFoodCandidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, err := c.store.GetByKey(context.Background(), key)
	if err != nil {
		c.log.Warnw("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if row == nil {
		return nil, false
	}

	nowMs := c.now().UnixMilli()
	if row.ExpiresAtMs <= nowMs || row.SchemaVersion != SchemaVersion {
		c.evict(key)
		return nil, false
	}

	var items []types.RemoteFoodCandidate
	if err := json.Unmarshal(row.Payload, &items); err != nil {
		c.log.Warnw("cache payload corrupt, evicting", "key", key, "error", err)
		c.evict(key)
		return nil, false
	}
	return items, true
}

// Put stores the candidate list under key with the configured TTL. Storage
// failures are logged and swallowed; caching is best effort.
func (c *Cache) Put(key, providerID string, rt types.RequestType, input string, items []types.RemoteFoodCandidate) {
	payload, err := json.Marshal(items)
	if err != nil {
		c.log.Warnw("cache payload encode failed", "key", key, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	row := Row{
		Key:           key,
		ProviderID:    providerID,
		RequestType:   string(rt),
		Input:         normalizeInput(rt, input),
		Payload:       payload,
		CachedAtMs:    now.UnixMilli(),
		ExpiresAtMs:   now.Add(c.ttl).UnixMilli(),
		SchemaVersion: SchemaVersion,
	}
	if err := c.store.Upsert(context.Background(), row); err != nil {
		c.log.Warnw("cache write failed", "key", key, "error", err)
	}
}

// PurgeExpired removes expired and version-mismatched entries and reports
// how many were dropped.
func (c *Cache) PurgeExpired() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired, err := c.store.DeleteExpired(context.Background(), c.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	stale, err := c.store.DeleteByVersionMismatch(context.Background(), SchemaVersion)
	if err != nil {
		return expired, err
	}
	return expired + stale, nil
}

// Count reports the number of stored entries, expired or not.
func (c *Cache) Count() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.CountAll(context.Background())
}

func (c *Cache) evict(key string) {
	if err := c.store.DeleteByKey(context.Background(), key); err != nil {
		c.log.Warnw("cache evict failed", "key", key, "error", err)
	}
}
