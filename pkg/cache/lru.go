// Package cache provides a generic thread-safe LRU cache bounded by entry
// count, total cost, or both.
package cache

import (
	"sync"
	"sync/atomic"
)

// entry is a doubly-linked list node holding a key-value pair.
type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
	prev  *entry[K, V]
	next  *entry[K, V]
}

// LRU is a thread-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V] // Most recently used.
	tail    *entry[K, V] // Least recently used.

	maxEntries int
	maxCost    int64
	curCost    int64
	costFunc   func(V) int64

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithMaxEntries sets the maximum number of entries.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.maxEntries = n
	}
}

// WithMaxCost bounds the summed cost of all values, as measured by costFunc.
func WithMaxCost[K comparable, V any](maxCost int64, costFunc func(V) int64) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.maxCost = maxCost
		c.costFunc = costFunc
	}
}

// New creates an LRU. At least one of WithMaxEntries or WithMaxCost must be
// given; otherwise New panics.
func New[K comparable, V any](opts ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{entries: make(map[K]*entry[K, V])}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxEntries <= 0 && c.maxCost <= 0 {
		panic("cache: at least one capacity limit (WithMaxEntries or WithMaxCost) is required")
	}

	return c
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)
	c.moveToFront(ent)

	return ent.value, true
}

// Put adds or replaces the value for key, evicting least recently used
// entries until it fits. A value costing more than the whole cache is
// dropped.
func (c *LRU[K, V]) Put(key K, value V) {
	cost := c.valueCost(value)
	if c.maxCost > 0 && cost > c.maxCost {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.curCost += cost - ent.cost
		ent.value = value
		ent.cost = cost
		c.moveToFront(ent)
		c.evictOverflow(ent)

		return
	}

	for c.maxEntries > 0 && len(c.entries) >= c.maxEntries && c.tail != nil {
		c.evictTail()
	}

	for c.maxCost > 0 && c.curCost+cost > c.maxCost && c.tail != nil {
		c.evictTail()
	}

	ent := &entry[K, V]{key: key, value: value, cost: cost}
	c.entries[key] = ent
	c.curCost += cost
	c.addToFront(ent)
}

// Clear removes every entry. Hit and miss counts are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.head = nil
	c.tail = nil
	c.curCost = 0
}

// Stats holds cache performance counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
	Cost    int64
}

// HitRate returns the fraction of lookups that hit, or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Stats returns current counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: len(c.entries),
		Cost:    c.curCost,
	}
}

func (c *LRU[K, V]) valueCost(value V) int64 {
	if c.costFunc != nil {
		return c.costFunc(value)
	}

	return 1
}

// evictOverflow evicts from the tail while over the cost limit, sparing keep.
func (c *LRU[K, V]) evictOverflow(keep *entry[K, V]) {
	for c.maxCost > 0 && c.curCost > c.maxCost && c.tail != nil && c.tail != keep {
		c.evictTail()
	}
}

func (c *LRU[K, V]) evictTail() {
	victim := c.tail
	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.curCost -= victim.cost
}

func (c *LRU[K, V]) moveToFront(ent *entry[K, V]) {
	if ent == c.head {
		return
	}

	c.removeFromList(ent)
	c.addToFront(ent)
}

func (c *LRU[K, V]) addToFront(ent *entry[K, V]) {
	ent.prev = nil
	ent.next = c.head

	if c.head != nil {
		c.head.prev = ent
	}

	c.head = ent

	if c.tail == nil {
		c.tail = ent
	}
}

func (c *LRU[K, V]) removeFromList(ent *entry[K, V]) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.head = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.tail = ent.prev
	}

	ent.prev = nil
	ent.next = nil
}
