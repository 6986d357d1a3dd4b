// Package settings serves operator-editable behavioral settings (prompt
// fragments, message templates, thresholds) from the bot_settings table
// with a time-boxed staleness window.
//
// The cache is an explicit object owned by the application and passed to
// the prompt builder and tool dispatcher; invalidation is an explicit
// method, not a module-level timestamp.
package settings

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/store"
)

// DefaultTTL is the staleness window for a loaded settings set.
const DefaultTTL = 5 * time.Minute

// Setting value types as declared in bot_settings rows.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeJSON    = "json"
)

// Loader reads the full settings set from the data store.
type Loader interface {
	ListSettings(ctx context.Context) ([]store.Setting, error)
}

// Map is a decoded settings snapshot. Values are string, float64, bool or
// decoded JSON depending on each entry's declared type. A Map is never
// mutated after construction, so it is safe to share across readers.
type Map map[string]any

// String returns the string value for key, or def when absent or of
// another type.
func (m Map) String(key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

// Int returns the numeric value for key truncated to int, or def.
func (m Map) Int(key string, def int) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return def
}

// Bool returns the boolean value for key, or def.
func (m Map) Bool(key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

// Cache is the process-wide settings cache.
//
// Get returns the cached snapshot while it is younger than the TTL and
// reloads otherwise. Reload failures degrade to the last good snapshot
// (possibly empty on cold start): configuration unavailability must not
// break a conversation. Snapshot replacement is atomic from a reader's
// point of view: readers always see either the old or the new Map, never
// a partial one.
type Cache struct {
	loader Loader
	ttl    time.Duration
	logger log.Logger

	mu       sync.RWMutex
	values   Map
	loadedAt time.Time
}

// New creates a settings cache. A non-positive ttl uses DefaultTTL.
func New(loader Loader, ttl time.Duration, logger log.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Cache{
		loader: loader,
		ttl:    ttl,
		logger: logger,
		values: Map{},
	}
}

// Get returns the current settings snapshot, reloading if the cache has
// gone stale. Never returns nil.
func (c *Cache) Get(ctx context.Context) Map {
	c.mu.RLock()
	fresh := time.Since(c.loadedAt) < c.ttl
	values := c.values
	c.mu.RUnlock()

	if fresh {
		return values
	}
	return c.reload(ctx)
}

// ForceReload invalidates the cache unconditionally and reloads.
// Used by the admin API after a settings edit. Returns the reload error
// alongside the best-available snapshot.
func (c *Cache) ForceReload(ctx context.Context) (Map, error) {
	entries, err := c.loader.ListSettings(ctx)
	if err != nil {
		c.logger.Warn("settings reload failed, serving stale cache", "error", err)
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.values, err
	}
	return c.replace(entries), nil
}

// reload refreshes the snapshot, falling back to the stale one on error.
// Concurrent reloads may both fetch; the last writer wins, which is
// acceptable because reloads are idempotent reads of the same set.
func (c *Cache) reload(ctx context.Context) Map {
	m, _ := c.ForceReload(ctx)
	return m
}

func (c *Cache) replace(entries []store.Setting) Map {
	next := make(Map, len(entries))
	for _, e := range entries {
		next[e.Key] = decode(e)
	}

	c.mu.Lock()
	c.values = next
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.logger.Debug("settings reloaded", "count", len(next))
	return next
}

// decode converts one row's raw value by its declared type. Undecodable
// values fall back to the raw string so a bad row degrades instead of
// vanishing.
func decode(e store.Setting) any {
	switch e.Type {
	case TypeNumber:
		if f, err := strconv.ParseFloat(e.Value, 64); err == nil {
			return f
		}
	case TypeBoolean:
		if b, err := strconv.ParseBool(e.Value); err == nil {
			return b
		}
	case TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(e.Value), &v); err == nil {
			return v
		}
	}
	return e.Value
}
