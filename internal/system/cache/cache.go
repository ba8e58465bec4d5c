/*
 * Copyright (c) 2025, IntelliWeather.
 *
 * IntelliWeather licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package cache provides a bounded, thread-safe in-memory cache with TTL expiry,
// a swappable eviction policy and a background sweeper for cold expired entries.
package cache

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/log"
	"github.com/intelliweather/intelliweather/internal/system/periodic"
)

const loggerComponentName = "Cache"

// persistHitThreshold is the minimum hit count at which an evicted entry is
// handed to the persist callback instead of being silently dropped.
const persistHitThreshold = 5

// shutdownTimeout bounds the wait for the background sweeper during Shutdown.
const shutdownTimeout = 5 * time.Second

// Options configures a cache instance. Non-positive values are clamped to the
// defaults below at construction time.
type Options struct {
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

const (
	defaultTTL             = time.Hour
	defaultMaxSize         = 1000
	defaultCleanupInterval = 5 * time.Minute
)

// Cache is a bounded map of string keys to entries, guarded by a single lock.
// A dedicated sweeper goroutine purges expired entries that are never re-read.
type Cache[T any] struct {
	name       string
	mu         sync.Mutex
	entries    map[string]*Entry[T]
	maxSize    int
	defaultTTL time.Duration
	policy     EvictionPolicy[T]
	persist    PersistFunc[T]

	hits      int64
	misses    int64
	evictions int64

	sweeper *periodic.Runner
}

// New creates a cache and starts its background sweeper. Shutdown must be
// called to stop the sweeper.
func New[T any](name string, opts Options, policy EvictionPolicy[T]) *Cache[T] {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyCacheName, name))

	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = defaultTTL
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultMaxSize
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if policy == nil {
		policy = NewLeastHitsPolicy[T]()
	}

	c := &Cache[T]{
		name:       name,
		entries:    make(map[string]*Entry[T]),
		maxSize:    opts.MaxSize,
		defaultTTL: opts.DefaultTTL,
		policy:     policy,
	}

	c.sweeper = periodic.NewRunner(name+"-sweeper", opts.CleanupInterval, func() {
		c.CleanupExpired()
	})
	c.sweeper.Start()

	logger.Info("Cache initialized",
		log.Duration("defaultTTL", opts.DefaultTTL),
		log.Int("maxSize", opts.MaxSize),
		log.Duration("cleanupInterval", opts.CleanupInterval),
		log.String("evictionPolicy", policy.Name()))

	return c
}

// Get retrieves a value from the cache. An expired entry is removed lazily and
// counted as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		var zero T
		return zero, false
	}

	if entry.isExpired(time.Now()) {
		delete(c.entries, key)
		c.misses++
		var zero T
		return zero, false
	}

	entry.HitCount++
	c.hits++
	return entry.Value, true
}

// Set stores a value under the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with an explicit TTL. When the store is full and
// the key is new, the eviction policy selects a victim first, so the size bound
// holds after every completed call. Inserting over an existing key resets its
// metadata. The persist callback for a popular victim runs after the lock is
// released; its failure is logged and never reverses the eviction.
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyCacheName, c.name))

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	var victimKey string
	var victimValue T
	var persistVictim bool

	c.mu.Lock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		victimKey, victimValue, persistVictim = c.evictLocked()
	}

	now := time.Now()
	c.entries[key] = &Entry[T]{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	persist := c.persist
	c.mu.Unlock()

	if persistVictim && persist != nil {
		invokePersist(logger, persist, victimKey, victimValue)
	}

	logger.Debug("Cache entry set", log.String("key", key), log.Duration("ttl", ttl))
}

// evictLocked removes the policy-selected victim and reports whether it
// qualifies for persistence. Callers must hold the lock.
func (c *Cache[T]) evictLocked() (string, T, bool) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyCacheName, c.name))

	var zero T
	victimKey := c.policy.SelectVictim(c.entries)
	if victimKey == "" {
		return "", zero, false
	}

	victim, exists := c.entries[victimKey]
	if !exists {
		return "", zero, false
	}

	delete(c.entries, victimKey)
	c.evictions++

	logger.Debug("Cache entry evicted", log.String("key", victimKey),
		log.Int64("hitCount", victim.HitCount))

	return victimKey, victim.Value, victim.HitCount >= persistHitThreshold
}

// invokePersist calls the persist callback, isolating the cache from callback
// panics and errors.
func invokePersist[T any](logger *log.Logger, persist PersistFunc[T], key string, value T) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Persist callback panicked", log.String("key", key), log.Any("panic", rec))
		}
	}()

	if err := persist(key, value); err != nil {
		logger.Error("Failed to persist evicted cache entry", log.String("key", key), log.Error(err))
	}
}

// Delete removes a key and reports whether it existed.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		delete(c.entries, key)
		return true
	}
	return false
}

// Keys returns a sorted snapshot of the unexpired keys, optionally filtered by
// prefix. It does not affect hit or miss statistics.
func (c *Cache[T]) Keys(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, len(c.entries))
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			continue
		}
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clear empties the store. Cumulative hit, miss and eviction counters are kept.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry[T])
	c.mu.Unlock()

	log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyCacheName, c.name)).Info("Cache cleared")
}

// Size returns the current number of entries.
func (c *Cache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a consistent snapshot of the cache statistics. The hit rate is
// zero when no get calls have been made.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = math.Round(float64(c.hits)/float64(total)*10000) / 100
	}

	return Stats{
		Size:           len(c.entries),
		MaxSize:        c.maxSize,
		Hits:           c.hits,
		Misses:         c.misses,
		HitRatePercent: hitRate,
		Evictions:      c.evictions,
		DefaultTTL:     c.defaultTTL,
	}
}

// ResetStats zeroes the cumulative hit, miss and eviction counters.
func (c *Cache[T]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// SetPersistCallback registers a hook invoked for future evictions of popular
// entries. It has no retroactive effect.
func (c *Cache[T]) SetPersistCallback(fn PersistFunc[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persist = fn
}

// CleanupExpired removes all expired entries, whether or not they were ever
// re-read, and returns the number removed.
func (c *Cache[T]) CleanupExpired() int {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyCacheName, c.name))

	c.mu.Lock()
	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		logger.Debug("Expired cache entries cleaned", log.Int("count", removed))
	}
	return removed
}

// Shutdown stops the background sweeper, waiting up to a bounded timeout.
func (c *Cache[T]) Shutdown() {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyCacheName, c.name))

	if !c.sweeper.Stop(shutdownTimeout) {
		logger.Warn("Cache sweeper did not stop in time")
		return
	}
	logger.Info("Cache shutdown complete")
}
