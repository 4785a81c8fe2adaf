package state

import "sync"

// Memo caches the result of compute for the last key it saw.
type Memo[K comparable, V any] struct {
	mu    sync.Mutex
	key   K
	val   V
	valid bool
	runs  int
}

// Get returns the cached value when key matches the previous call and
// otherwise recomputes it.
func (m *Memo[K, V]) Get(key K, compute func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.key == key {
		return m.val
	}
	m.val = compute()
	m.key = key
	m.valid = true
	m.runs++
	return m.val
}

// Runs reports how many times compute has been called.
func (m *Memo[K, V]) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

func (m *Memo[K, V]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
}
