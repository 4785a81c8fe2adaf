package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/config"
	"github.com/dmitrijs2005/impify/internal/client/repositories/previews"
	"github.com/dmitrijs2005/impify/internal/client/services"
	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
	"github.com/dmitrijs2005/impify/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	toastHistory         = 20
	sessionCheckInterval = time.Minute
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	bus     *session.Bus
	router  *Router
	toaster *Toaster

	authService services.AuthService
	notes       services.NotesService
	folders     services.FoldersService
	flashcards  services.FlashcardsService
	dashboard   *services.Dashboard
	previews    services.PreviewService
	watcher     *services.SessionWatcher
	uploader    *services.Uploader

	modeMu sync.Mutex
	Mode   Mode

	reader *bufio.Reader
	out    io.Writer
}

// deps are the pieces NewApp builds from configuration.
type deps struct {
	client     client.Client
	creds      *client.CredentialStore
	bus        *session.Bus
	previews   previews.Repository
	httpClient *http.Client
}

// NewApp opens the local database and wires every service. The returned
// App owns the database until Close.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	repos := client.NewRepositories(db)
	creds := client.NewCredentialStore(repos.Persistent, repos.Session)
	bus := session.NewBus()

	a := newApp(ctx, c, log, deps{
		client:     client.NewHTTPClient(c.BaseURL, c.RequestTimeout, creds, bus, log),
		creds:      creds,
		bus:        bus,
		previews:   repos.Previews,
		httpClient: &http.Client{Timeout: c.RequestTimeout},
	}, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, d deps, in io.Reader, out io.Writer) *App {
	a := &App{
		config:  c,
		log:     log.With("component", "cli"),
		bus:     d.bus,
		router:  NewRouter(common.AuthRoute),
		toaster: NewToaster(out, toastHistory),
		reader:  bufio.NewReader(in),
		out:     out,
	}

	a.authService = services.NewAuthService(d.client, d.creds, d.bus, a.toaster, log)
	a.notes = services.NewNotesService(d.client, a.toaster, log)
	a.folders = services.NewFoldersService(d.client, a.toaster, log)
	a.flashcards = services.NewFlashcardsService(d.client, a.toaster, log)
	a.dashboard = services.NewDashboard(d.client, a.toaster, c.LevelUpDuration, log)
	a.previews = services.NewPreviewService(d.previews, d.httpClient, c.PreviewMaxBytes, log)
	a.watcher = services.NewSessionWatcher(a.authService, c.InactivityLimit, c.TokenRefreshWindow, log)
	a.uploader = services.NewUploader(ctx, d.client, a.toaster, a.router, c.RedirectDelay, log,
		services.WithNoteCollection(a.notes.Collection()),
		services.WithProgressListener(a.printProgress),
	)

	a.router.Bind(d.bus)
	d.bus.Subscribe(func(session.Event) { a.resetViews() })
	a.router.OnChange(func(route string) {
		a.log.Debug(context.Background(), "navigated", "route", route)
	})
	return a
}

// resetViews drops everything fetched for the previous user.
func (a *App) resetViews() {
	a.dashboard.Reset()
	a.notes.Collection().Set(nil)
	a.folders.Collection().Set(nil)
	a.flashcards.Collection().Set(nil)
}

func (a *App) Close() error {
	a.uploader.Close()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.Mode
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated()
}

func (a *App) Touch() {
	a.authService.Touch()
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.authService.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartDashboardPoller keeps notifications and token info fresh while a
// user is signed in, so unread and level-up toasts appear between commands.
func (a *App) StartDashboardPoller(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if a.isLoggedIn() {
				a.dashboard.FetchNotifications(ctx)
				a.dashboard.FetchTokenInfo(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}
