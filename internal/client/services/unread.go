package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/impify/internal/client/models"
)

// UnreadWatcher toasts the unread count once per distinct notification set.
// Two lists with the same ids and read flags are the same set regardless of
// order.
type UnreadWatcher struct {
	mu          sync.Mutex
	notifier    Notifier
	fingerprint string
	seen        bool
	count       int
}

func NewUnreadWatcher(n Notifier) *UnreadWatcher {
	return &UnreadWatcher{notifier: n}
}

func fingerprint(ns []models.Notification) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		r := "0"
		if n.IsRead {
			r = "1"
		}
		parts[i] = string(n.ID) + ":" + r
	}
	slices.Sort(parts)
	return strings.Join(parts, ",")
}

// Observe returns the unread count and whether a toast was emitted.
func (w *UnreadWatcher) Observe(ns []models.Notification) (int, bool) {
	count := models.UnreadCount(ns)
	fp := fingerprint(ns)

	w.mu.Lock()
	changed := !w.seen || fp != w.fingerprint
	w.seen = true
	w.fingerprint = fp
	w.count = count
	w.mu.Unlock()

	if !changed || count == 0 {
		return count, false
	}
	w.notifier.Info(unreadMessage(count))
	return count, true
}

func (w *UnreadWatcher) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

func (w *UnreadWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = false
	w.fingerprint = ""
	w.count = 0
}

func unreadMessage(n int) string {
	if n == 1 {
		return "You have 1 new notification!"
	}
	return fmt.Sprintf("You have %d new notifications!", n)
}
