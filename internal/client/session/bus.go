// Package session carries the process-wide "session invalidated" signal from
// the HTTP client to whoever owns navigation and in-memory session state.
package session

import (
	"sync"
)

// Reason says why the session ended.
type Reason string

const (
	ReasonUnauthorized Reason = "unauthorized"
	ReasonLogout       Reason = "logout"
	ReasonExpired      Reason = "expired"
	ReasonInactivity   Reason = "inactivity"
)

type Event struct {
	Reason Reason
	// Path is the API path whose response ended the session, if any.
	Path string
}

type Handler func(Event)

// Bus is a synchronous fan-out of session events. Handlers run on the
// publisher's goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
	order    []int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}
