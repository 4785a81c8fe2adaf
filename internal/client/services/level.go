package services

import (
	"sync"
	"time"
)

// LevelTracker detects level increases across token-info polls.
//
// The first observation only seeds the tracker. Later observations fire when
// the level exceeds both the previous observation and every level seen so
// far, so a drop followed by a recovery never re-announces a level. The flag
// clears itself after the configured duration. Reset forgets everything and
// is meant for logout.
type LevelTracker struct {
	mu       sync.Mutex
	duration time.Duration
	last     int
	peak     int
	flag     bool
	gen      uint64
	timer    *time.Timer
}

func NewLevelTracker(flagDuration time.Duration) *LevelTracker {
	return &LevelTracker{duration: flagDuration}
}

// Observe records level (values below 1 count as 1) and reports whether it
// raised the level-up flag.
func (t *LevelTracker) Observe(level int) bool {
	if level < 1 {
		level = 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fired := t.last != 0 && level > t.last && level > t.peak
	t.last = level
	if level > t.peak {
		t.peak = level
	}
	if !fired {
		return false
	}

	t.flag = true
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.duration, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.gen == gen {
			t.flag = false
		}
	})
	return true
}

// LevelUp reports whether the flag is currently raised.
func (t *LevelTracker) LevelUp() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flag
}

// Last returns the most recent observed level, or 0 before the first poll.
func (t *LevelTracker) Last() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *LevelTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.last, t.peak, t.flag = 0, 0, false
}
