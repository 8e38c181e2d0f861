// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache implements the dual-tier cache contract shared by the
// registry and vulnerability adapters: an optional in-memory tier with
// sliding and absolute expirations sitting in front of a durable,
// never-auto-evicted key-value tier.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Key addresses one cache entry: a package name plus a version key. For
// the metadata cache the version key is the requested range string (it
// doubles as a cache tag, per the registry adapter's fetch contract); for
// the vulnerability cache it is the concrete resolved version string.
type Key struct {
	Name       string
	VersionKey string
}

const (
	// DefaultSlidingTTL is the memory tier's sliding expiration window.
	DefaultSlidingTTL = time.Hour
	// DefaultAbsoluteTTL is the memory tier's absolute expiration window.
	DefaultAbsoluteTTL = 24 * time.Hour
)

// Durable is the key-value collaborator the dual-tier cache fronts:
// transactional upsert by (name, version) and full iteration for LoadAll.
// A concrete implementation backs this with go.etcd.io/bbolt (see
// durable_bbolt.go); tests can supply an in-memory stub.
type Durable[V any] interface {
	Get(key Key) (V, bool, error)
	Put(key Key, value V) error
	LoadAll() (map[Key]V, error)
}

type memoryEntry[V any] struct {
	value      V
	storedAt   time.Time // refreshed on every read; backs the sliding TTL
	insertedAt time.Time // fixed at write time; backs the absolute TTL
}

// Cache is a generic dual-tier cache over value type V. The memory tier is
// optional; when disabled every operation passes straight through to the
// durable tier.
type Cache[V any] struct {
	name string

	memoryEnabled bool
	slidingTTL    time.Duration
	absoluteTTL   time.Duration

	mu     sync.RWMutex
	memory map[Key]memoryEntry[V]

	durableMu sync.Mutex
	durable   Durable[V]

	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Cache at construction time.
type Option[V any] func(*Cache[V])

// WithMemoryTier enables the in-memory tier with the given expirations.
// Zero durations fall back to the spec defaults (1h sliding, 24h absolute).
func WithMemoryTier[V any](sliding, absolute time.Duration) Option[V] {
	return func(c *Cache[V]) {
		c.memoryEnabled = true
		c.slidingTTL = orDefault(sliding, DefaultSlidingTTL)
		c.absoluteTTL = orDefault(absolute, DefaultAbsoluteTTL)
	}
}

// WithLogger attaches a structured logger for contained failures.
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(c *Cache[V]) { c.logger = logger }
}

// WithMetrics attaches a prometheus-backed hit/miss/error counter set.
func WithMetrics[V any](m *Metrics) Option[V] {
	return func(c *Cache[V]) { c.metrics = m }
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// New builds a Cache fronting durable with the memory tier disabled unless
// WithMemoryTier is passed. name identifies the cache kind ("metadata",
// "vulnerabilities") for metrics and log lines.
func New[V any](name string, durable Durable[V], opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		name:    name,
		durable: durable,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.memoryEnabled && c.memory == nil {
		c.memory = make(map[Key]memoryEntry[V])
	}
	return c
}

// Get looks up key, checking memory first (if enabled) then durable. A
// durable hit backfills memory. Durable errors and expired/missing memory
// entries are both reported as a plain miss — this contract never
// propagates an error to the caller; it only ever returns found=false.
func (c *Cache[V]) Get(key Key) (value V, found bool) {
	if c.memoryEnabled {
		if v, ok := c.getMemory(key); ok {
			c.recordHit("memory")
			return v, true
		}
	}

	c.durableMu.Lock()
	v, ok, err := c.durable.Get(key)
	c.durableMu.Unlock()

	if err != nil {
		c.warn("durable get failed", key, err)
		c.recordMiss()
		return value, false
	}
	if !ok {
		c.recordMiss()
		return value, false
	}

	if c.memoryEnabled {
		c.putMemory(key, v)
	}
	c.recordHit("durable")
	return v, true
}

// Put writes to memory (if enabled) and durable. Durable is upserted by
// primary key (name, version); the durable implementation stamps
// updated_at.
func (c *Cache[V]) Put(key Key, value V) error {
	if c.memoryEnabled {
		c.putMemory(key, value)
	}

	c.durableMu.Lock()
	err := c.durable.Put(key, value)
	c.durableMu.Unlock()

	if err != nil {
		c.warn("durable put failed", key, err)
		return err
	}
	return nil
}

// LoadAll rehydrates the memory tier from durable storage. A no-op when the
// memory tier is disabled.
func (c *Cache[V]) LoadAll() error {
	if !c.memoryEnabled {
		return nil
	}

	c.durableMu.Lock()
	all, err := c.durable.LoadAll()
	c.durableMu.Unlock()

	if err != nil {
		c.warn("durable load_all failed", Key{}, err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, v := range all {
		c.memory[k] = memoryEntry[V]{value: v, storedAt: now, insertedAt: now}
	}
	return nil
}

func (c *Cache[V]) getMemory(key Key) (V, bool) {
	c.mu.RLock()
	e, ok := c.memory[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}

	now := time.Now()
	if now.Sub(e.insertedAt) > c.absoluteTTL || now.Sub(e.storedAt) > c.slidingTTL {
		c.mu.Lock()
		delete(c.memory, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	// Refresh the sliding window. Racing readers may each refresh the
	// entry redundantly; that is an accepted, idempotent duplicate write.
	// Only the timestamp of the entry currently stored is touched, so a
	// Put that landed since the read above is never overwritten.
	c.mu.Lock()
	if cur, ok := c.memory[key]; ok {
		cur.storedAt = now
		c.memory[key] = cur
	}
	c.mu.Unlock()

	return e.value, true
}

func (c *Cache[V]) putMemory(key Key, value V) {
	now := time.Now()
	c.mu.Lock()
	c.memory[key] = memoryEntry[V]{value: value, storedAt: now, insertedAt: now}
	c.mu.Unlock()
}

func (c *Cache[V]) warn(msg string, key Key, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, "cache", c.name, "name", key.Name, "version_key", key.VersionKey, "error", err)
	if c.metrics != nil {
		c.metrics.errors.WithLabelValues(c.name).Inc()
	}
}

func (c *Cache[V]) recordHit(tier string) {
	if c.metrics != nil {
		c.metrics.hits.WithLabelValues(c.name, tier).Inc()
	}
}

func (c *Cache[V]) recordMiss() {
	if c.metrics != nil {
		c.metrics.misses.WithLabelValues(c.name).Inc()
	}
}
