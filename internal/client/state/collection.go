// Package state holds versioned in-memory containers for fetched data.
//
// Every mutation bumps a version counter. Derived values are keyed on the
// versions of their inputs and recomputed only when one of them moves, which
// is how the client avoids recomputing view models on every read.
package state

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/impify/internal/client/models"
)

// Keyed is an entity with a stable identifier.
type Keyed interface {
	Key() models.ID
}

// Collection is an ordered list of entities. Reads return copies.
type Collection[T Keyed] struct {
	mu      sync.RWMutex
	items   []T
	version uint64
}

func NewCollection[T Keyed]() *Collection[T] {
	return &Collection[T]{}
}

func (c *Collection[T]) Items() []T {
	items, _ := c.Snapshot()
	return items
}

// Snapshot returns the items together with the version they belong to.
func (c *Collection[T]) Snapshot() ([]T, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items), c.version
}

func (c *Collection[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Set replaces the contents. A nil slice is stored as empty.
func (c *Collection[T]) Set(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(items)
	if c.items == nil {
		c.items = []T{}
	}
	c.version++
}

func (c *Collection[T]) Append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	c.version++
}

// Replace swaps the item whose key equals id for item. It reports whether a
// match was found; nothing changes otherwise.
func (c *Collection[T]) Replace(id models.ID, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].Key() == id {
			c.items[i] = item
			c.version++
			return true
		}
	}
	return false
}

// Remove drops every item whose key equals id.
func (c *Collection[T]) Remove(id models.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(it T) bool { return it.Key() == id })
	if len(c.items) == n {
		return false
	}
	c.version++
	return true
}

// Update applies fn to every item under the write lock.
func (c *Collection[T]) Update(fn func(items []T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.items)
	c.version++
}

func (c *Collection[T]) Find(id models.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
