// Package cache provides the fixed-capacity LRU cache that memoizes
// search results per query.
package cache

import (
	"container/list"
	"errors"
)

// ErrInvalidCapacity is returned by New when capacity is less than 1.
var ErrInvalidCapacity = errors.New("cache: capacity must be at least 1")

// entry is the value stored in list elements. The key is kept here so
// eviction, which starts from the list tail, can find the map slot.
type entry[K comparable, V any] struct {
	key K
	val V
}

// LRU is a fixed-capacity cache with least-recently-used eviction.
//
// Recency is a doubly-linked list: front is the most recently used entry,
// back the least. Both Get and Put promote the touched key to the front,
// so the back element is always the eviction victim.
//
// An LRU is not safe for concurrent use; callers that share one across
// goroutines must synchronize externally.
type LRU[K comparable, V any] struct {
	capacity int
	ll       *list.List
	items    map[K]*list.Element
}

// New creates an empty cache holding at most capacity entries.
// Capacity below 1 is rejected with ErrInvalidCapacity.
func New[K comparable, V any](capacity int) (*LRU[K, V], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &LRU[K, V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[K]*list.Element, capacity),
	}, nil
}

// Get returns the value stored under key and promotes the entry to most
// recently used. A miss returns the zero value and false and leaves the
// recency order untouched.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if ele, ok := c.items[key]; ok {
		c.ll.MoveToFront(ele)
		return ele.Value.(*entry[K, V]).val, true
	}
	var zero V
	return zero, false
}

// Put stores val under key and makes the entry the most recently used.
// An existing key is updated in place without consuming capacity. A new
// key at full capacity evicts the least recently used entry first.
// Any key value is accepted, including the zero value.
func (c *LRU[K, V]) Put(key K, val V) {
	if ele, ok := c.items[key]; ok {
		c.ll.MoveToFront(ele)
		ele.Value.(*entry[K, V]).val = val
		return
	}
	if c.ll.Len() == c.capacity {
		c.evictOldest()
	}
	c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, val: val})
}

func (c *LRU[K, V]) evictOldest() {
	back := c.ll.Back()
	if back == nil {
		return
	}
	c.ll.Remove(back)
	delete(c.items, back.Value.(*entry[K, V]).key)
}

// Len returns the current number of entries.
func (c *LRU[K, V]) Len() int {
	return c.ll.Len()
}

// Cap returns the fixed capacity the cache was constructed with.
func (c *LRU[K, V]) Cap() int {
	return c.capacity
}

// Keys returns the keys from least to most recently used.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.ll.Len())
	for ele := c.ll.Back(); ele != nil; ele = ele.Prev() {
		keys = append(keys, ele.Value.(*entry[K, V]).key)
	}
	return keys
}
