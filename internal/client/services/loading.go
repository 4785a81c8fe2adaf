package services

import "sync/atomic"

// loadCounter is true while at least one tracked call is outstanding.
type loadCounter struct {
	n atomic.Int32
}

func (l *loadCounter) begin() func() {
	l.n.Add(1)
	return func() { l.n.Add(-1) }
}

func (l *loadCounter) active() bool {
	return l.n.Load() > 0
}
