package state

import "sync"

// Value is a single versioned slot. The zero Value holds the zero T and is
// not yet set.
type Value[T any] struct {
	mu      sync.RWMutex
	v       T
	set     bool
	version uint64
}

func (v *Value[T]) Get() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v, v.set
}

func (v *Value[T]) Snapshot() (T, bool, uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v, v.set, v.version
}

func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = x
	v.set = true
	v.version++
}

// Reset forgets the value.
func (v *Value[T]) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	var zero T
	v.v = zero
	v.set = false
	v.version++
}

func (v *Value[T]) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}
