package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/state"
	"github.com/dmitrijs2005/impify/internal/logging"
)

// DashboardStats are the headline numbers. Server-reported fields win when
// present; otherwise the local collection sizes are used.
type DashboardStats struct {
	Notes      int
	Flashcards int
	Uploads    int
	Accuracy   float64
}

func ComputeStats(server *models.Stats, notes, flashcards int) DashboardStats {
	out := DashboardStats{Notes: notes, Flashcards: flashcards}
	if server == nil {
		return out
	}
	if server.Notes != nil {
		out.Notes = *server.Notes
	}
	if server.Flashcards != nil {
		out.Flashcards = *server.Flashcards
	}
	if server.Uploads != nil {
		out.Uploads = *server.Uploads
	}
	if server.Accuracy != nil {
		out.Accuracy = *server.Accuracy
	}
	return out
}

// ViewModel is the merged dashboard. Values not yet fetched are nil.
type ViewModel struct {
	Notes         []models.Note
	Flashcards    []models.Flashcard
	Notifications []models.Notification
	Stats         *models.Stats
	Quota         *models.Quota
	TokenInfo     *models.TokenInfo

	UnreadCount      int
	DashboardStats   DashboardStats
	RecentNotes      []models.Note
	RecentFlashcards []models.Flashcard
	RecentActivity   []Activity

	Loading bool
	LevelUp bool
	Error   string
}

// derived is the memoized part of ViewModel.
type derived struct {
	notes         []models.Note
	flashcards    []models.Flashcard
	notifications []models.Notification
	stats         *models.Stats
	quota         *models.Quota
	tokenInfo     *models.TokenInfo

	unread           int
	dashboardStats   DashboardStats
	recentNotes      []models.Note
	recentFlashcards []models.Flashcard
	recentActivity   []Activity
}

type DashboardOption func(*Dashboard)

// WithClock overrides the time source used for relative dates.
func WithClock(now func() time.Time) DashboardOption {
	return func(d *Dashboard) { d.now = now }
}

// Dashboard fans out the six dashboard reads and merges them.
type Dashboard struct {
	client   client.Client
	notifier Notifier
	log      logging.Logger
	now      func() time.Time

	notes         *state.Collection[models.Note]
	flashcards    *state.Collection[models.Flashcard]
	notifications *state.Collection[models.Notification]
	stats         state.Value[models.Stats]
	quota         state.Value[models.Quota]
	tokenInfo     state.Value[models.TokenInfo]

	errMu  sync.Mutex
	errMsg string

	loading loadCounter
	level   *LevelTracker
	unread  *UnreadWatcher
	memo    state.Memo[[6]uint64, *derived]
}

func NewDashboard(c client.Client, n Notifier, levelUpDuration time.Duration, log logging.Logger, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		client:        c,
		notifier:      n,
		log:           log.With("service", "dashboard"),
		now:           time.Now,
		notes:         state.NewCollection[models.Note](),
		flashcards:    state.NewCollection[models.Flashcard](),
		notifications: state.NewCollection[models.Notification](),
		level:         NewLevelTracker(levelUpDuration),
		unread:        NewUnreadWatcher(n),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Refresh issues all six reads concurrently and waits for them. A failure in
// one read never affects the others.
func (d *Dashboard) Refresh(ctx context.Context) {
	defer d.loading.begin()()
	d.setError("")

	var g errgroup.Group
	for _, fetch := range []func(context.Context){
		d.FetchNotes,
		d.FetchStats,
		d.FetchQuota,
		d.FetchNotifications,
		d.FetchFlashcards,
		d.FetchTokenInfo,
	} {
		g.Go(func() error {
			fetch(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dashboard) get(ctx context.Context, path string, out any) (bool, error) {
	defer d.loading.begin()()
	err := d.client.Do(ctx, http.MethodGet, path, nil, out)
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return true, err
}

func (d *Dashboard) FetchNotes(ctx context.Context) {
	var resp models.NotesResponse
	live, err := d.get(ctx, api.Notes, &resp)
	if !live {
		return
	}
	if err != nil {
		d.log.Error(ctx, "failed to load notes", "error", err)
		d.notes.Set(nil)
		d.setError("Failed to load notes")
		d.notifier.Error("Failed to load notes")
		return
	}
	d.notes.Set(resp.Notes)
	d.setError("")
}

func (d *Dashboard) FetchStats(ctx context.Context) {
	var s models.Stats
	live, err := d.get(ctx, api.DashboardStats, &s)
	if !live {
		return
	}
	if err != nil {
		d.log.Warn(ctx, "failed to load stats", "error", err)
		return
	}
	d.stats.Set(s)
}

func (d *Dashboard) FetchQuota(ctx context.Context) {
	var q models.Quota
	live, err := d.get(ctx, api.QuotaStatus, &q)
	if !live {
		return
	}
	if err != nil {
		d.log.Warn(ctx, "failed to load quota", "error", err)
		return
	}
	d.quota.Set(q)
}

func (d *Dashboard) FetchNotifications(ctx context.Context) {
	var resp models.NotificationsResponse
	live, err := d.get(ctx, api.Notifications, &resp)
	if !live {
		return
	}
	if err != nil {
		d.log.Warn(ctx, "failed to load notifications", "error", err)
		resp.Notifications = nil
	}
	d.notifications.Set(resp.Notifications)
	d.unread.Observe(d.notifications.Items())
}

func (d *Dashboard) FetchFlashcards(ctx context.Context) {
	var resp models.FlashcardsResponse
	live, err := d.get(ctx, api.Flashcards, &resp)
	if !live {
		return
	}
	if err != nil {
		d.log.Warn(ctx, "failed to load flashcards", "error", err)
		resp.Flashcards = nil
	}
	d.flashcards.Set(resp.Flashcards)
}

func (d *Dashboard) FetchTokenInfo(ctx context.Context) {
	var info models.TokenInfo
	live, err := d.get(ctx, api.TokenInfo, &info)
	if !live {
		return
	}
	if err != nil {
		d.log.Warn(ctx, "failed to load token info", "error", err)
		return
	}
	if d.level.Observe(info.Level) {
		d.log.Info(ctx, "level up", "level", info.EffectiveLevel())
	}
	d.tokenInfo.Set(info)
}

// MarkNotificationRead marks one notification read on the server and then
// locally.
func (d *Dashboard) MarkNotificationRead(ctx context.Context, id models.ID) error {
	err := d.client.Do(ctx, http.MethodPatch, api.NotificationRead(string(id)), nil, nil)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		d.log.Error(ctx, "failed to mark notification read", "notification_id", id, "error", err)
		d.notifier.Error("Failed to mark notification as read")
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	d.markLocal(func(n *models.Notification) bool { return n.ID == id })
	return nil
}

func (d *Dashboard) MarkAllNotificationsRead(ctx context.Context) error {
	err := d.client.Do(ctx, http.MethodPatch, api.NotificationsMarkAllRead, nil, nil)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		d.log.Error(ctx, "failed to mark all notifications read", "error", err)
		d.notifier.Error("Failed to mark notifications as read")
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	d.markLocal(func(*models.Notification) bool { return true })
	d.notifier.Success("All notifications marked as read")
	return nil
}

func (d *Dashboard) markLocal(match func(*models.Notification) bool) {
	d.notifications.Update(func(items []models.Notification) {
		for i := range items {
			if match(&items[i]) {
				items[i].IsRead = true
			}
		}
	})
	d.unread.Observe(d.notifications.Items())
}

func (d *Dashboard) setError(msg string) {
	d.errMu.Lock()
	d.errMsg = msg
	d.errMu.Unlock()
}

func (d *Dashboard) Loading() bool { return d.loading.active() }

func (d *Dashboard) LevelUp() bool { return d.level.LevelUp() }

func (d *Dashboard) UnreadCount() int { return d.unread.Count() }

// ViewModel returns the merged dashboard. Derived values are recomputed only
// when one of the six inputs changed since the previous call.
func (d *Dashboard) ViewModel() ViewModel {
	notes, nv := d.notes.Snapshot()
	flashcards, fv := d.flashcards.Snapshot()
	notifications, ntv := d.notifications.Snapshot()
	stats, hasStats, sv := d.stats.Snapshot()
	quota, hasQuota, qv := d.quota.Snapshot()
	info, hasInfo, tv := d.tokenInfo.Snapshot()

	key := [6]uint64{nv, fv, ntv, sv, qv, tv}
	dv := d.memo.Get(key, func() *derived {
		out := &derived{
			notes:            notes,
			flashcards:       flashcards,
			notifications:    notifications,
			unread:           models.UnreadCount(notifications),
			recentNotes:      notes[:min(len(notes), 3)],
			recentFlashcards: flashcards[:min(len(flashcards), 3)],
			recentActivity:   RecentActivity(notes, d.now()),
		}
		if hasStats {
			out.stats = &stats
		}
		if hasQuota {
			out.quota = &quota
		}
		if hasInfo {
			out.tokenInfo = &info
		}
		out.dashboardStats = ComputeStats(out.stats, len(notes), len(flashcards))
		return out
	})

	d.errMu.Lock()
	errMsg := d.errMsg
	d.errMu.Unlock()

	return ViewModel{
		Notes:            dv.notes,
		Flashcards:       dv.flashcards,
		Notifications:    dv.notifications,
		Stats:            dv.stats,
		Quota:            dv.quota,
		TokenInfo:        dv.tokenInfo,
		UnreadCount:      dv.unread,
		DashboardStats:   dv.dashboardStats,
		RecentNotes:      dv.recentNotes,
		RecentFlashcards: dv.recentFlashcards,
		RecentActivity:   dv.recentActivity,
		Loading:          d.Loading(),
		LevelUp:          d.LevelUp(),
		Error:            errMsg,
	}
}

// Recomputations reports how many times the derived view model was built.
func (d *Dashboard) Recomputations() int { return d.memo.Runs() }

// Reset drops every fetched value and the level/unread memory. It runs on
// logout.
func (d *Dashboard) Reset() {
	d.notes.Set(nil)
	d.flashcards.Set(nil)
	d.notifications.Set(nil)
	d.stats.Reset()
	d.quota.Reset()
	d.tokenInfo.Reset()
	d.level.Reset()
	d.unread.Reset()
	d.setError("")
}
