// Package cache implements the single-slot TTL cache that shields the
// slowly changing reference data (seat categories, room list, movie
// list) from repeated storage reads. Each dataset owns one Cache
// instance; an entry wraps a value together with an absolute expiry
// instant and is replaced wholesale on refresh, never mutated. Expiry is
// checked lazily on read, there is no eviction goroutine. Concurrent
// refreshes that race past an expired check only cost a duplicate
// loader call; readers always observe either the old entry or the new
// one.
package cache

import (
	"sync/atomic"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *entry[T]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Cache is a read-through cache holding a single value of type T.
type Cache[T any] struct {
	ttl  time.Duration
	now  func() time.Time
	slot atomic.Pointer[entry[T]]
}

// New returns a Cache whose entries live for ttl.
func New[T any](ttl time.Duration) *Cache[T] {
	return NewWithClock[T](ttl, time.Now)
}

// NewWithClock is New with an injectable clock, so tests can install a
// pre-expired entry and step time forward.
func NewWithClock[T any](ttl time.Duration, now func() time.Time) *Cache[T] {
	return &Cache[T]{ttl: ttl, now: now}
}

// Get returns the cached value, invoking load only when no entry exists
// or the existing one has expired. A fresh value is wrapped in a new
// entry stamped now+ttl; a failing load leaves the old (expired) entry
// in place and returns the error.
func (c *Cache[T]) Get(load func() (T, error)) (T, error) {
	if e := c.slot.Load(); e != nil && !e.expired(c.now()) {
		return e.value, nil
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.slot.Store(&entry[T]{value: v, expiresAt: c.now().Add(c.ttl)})
	return v, nil
}

// Put installs v as the current entry. Used at startup warm-up and by
// tests.
func (c *Cache[T]) Put(v T) {
	c.slot.Store(&entry[T]{value: v, expiresAt: c.now().Add(c.ttl)})
}
