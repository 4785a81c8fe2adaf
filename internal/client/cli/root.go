package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/impify/internal/common"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.authService.User(); u != nil && a.isLoggedIn() {
		s = u.Email + " "
		if a.authService.IsAdmin() {
			s += "admin "
		}
	}
	if m := a.mode(); m != "" {
		s += string(m) + " "
	}
	if st := a.uploader.State(); st.Uploading {
		s += fmt.Sprintf("uploading %d%% ", st.Progress)
	}
	s += a.router.Current()
	return fmt.Sprintf("(%s)", s)
}

// Root restores a stored session if there is one, starts the background
// watchers and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, headerStyle.Render("Impify")+" type 'help' for commands")

	a.checkOnline(ctx)
	if a.authService.CheckStatus(ctx) {
		a.router.Navigate(common.DashboardRoute)
		_ = a.Dashboard(ctx)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.PollInterval)
	go a.StartDashboardPoller(ctx, a.config.PollInterval)
	go a.watcher.Run(ctx, sessionCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
