package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
	"github.com/dmitrijs2005/impify/internal/logging"
)

// SessionWatcher enforces the inactivity timeout and refreshes tokens that
// are about to expire.
type SessionWatcher struct {
	auth          AuthService
	log           logging.Logger
	inactivity    time.Duration
	refreshWindow time.Duration
	now           func() time.Time
}

func NewSessionWatcher(auth AuthService, inactivity, refreshWindow time.Duration, log logging.Logger) *SessionWatcher {
	return &SessionWatcher{
		auth:          auth,
		log:           log.With("component", "session_watcher"),
		inactivity:    inactivity,
		refreshWindow: refreshWindow,
		now:           time.Now,
	}
}

// Check runs one pass. It is a no-op while logged out.
func (w *SessionWatcher) Check(ctx context.Context) {
	if !w.auth.IsAuthenticated() {
		return
	}

	now := w.now()
	if now.Sub(w.auth.LastActivity()) > w.inactivity {
		w.log.Info(ctx, "logging out after inactivity")
		w.auth.Logout(ctx, session.ReasonInactivity)
		return
	}

	due, err := w.auth.RefreshDue(ctx, now, w.refreshWindow)
	if err != nil {
		if !errors.Is(err, common.ErrNoCredentials) {
			w.log.Warn(ctx, "cannot inspect token expiry", "error", err)
		}
		return
	}
	if due {
		if err := w.auth.Refresh(ctx); err != nil {
			w.log.Warn(ctx, "automatic token refresh failed", "error", err)
		}
	}
}

// Run calls Check every interval until ctx is done.
func (w *SessionWatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}
