package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/services"
	"github.com/dmitrijs2005/impify/internal/common"
)

// usageError is returned when a command gets the wrong arguments.
type usageError string

func (e usageError) Error() string { return "Usage: " + string(e) }

func (a *App) Dashboard(ctx context.Context) error {
	a.router.Navigate(common.DashboardRoute)
	a.dashboard.Refresh(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	a.renderDashboard(a.dashboard.ViewModel())
	return nil
}

func (a *App) renderDashboard(vm services.ViewModel) {
	fmt.Fprintln(a.out, headerStyle.Render("Dashboard"))

	if vm.LevelUp && vm.TokenInfo != nil {
		fmt.Fprintln(a.out, levelUpStyle.Render(fmt.Sprintf("Level up! You reached level %d", vm.TokenInfo.EffectiveLevel())))
	}
	if vm.Error != "" {
		fmt.Fprintln(a.out, errorStyle.Render(vm.Error))
	}

	if info := vm.TokenInfo; info != nil {
		a.field("Level", fmt.Sprintf("%d (%d XP, %d to next)", info.EffectiveLevel(), info.XP, info.XPToNextLevel))
		a.field("Tokens", fmt.Sprintf("%d (%d monthly remaining, resets in %d days)", info.CurrentTokens, info.MonthlyTokensRemaining, info.DaysUntilReset))
		a.field("Streak", fmt.Sprintf("%d days", info.StreakDays))
	}

	s := vm.DashboardStats
	a.field("Notes", fmt.Sprint(s.Notes))
	a.field("Flashcards", fmt.Sprint(s.Flashcards))
	a.field("Uploads", fmt.Sprint(s.Uploads))
	if s.Accuracy > 0 {
		a.field("Accuracy", fmt.Sprintf("%.0f%%", s.Accuracy))
	}

	if q := vm.Quota; q != nil {
		a.field("Uploads today", fmt.Sprintf("%d of %d", q.DailyUsed, q.DailyLimit))
	}
	a.field("Unread", fmt.Sprint(vm.UnreadCount))

	if len(vm.RecentActivity) > 0 {
		fmt.Fprintln(a.out, labelStyle.Render("Recent activity"))
		for _, act := range vm.RecentActivity {
			fmt.Fprintf(a.out, "  %s  %s %s\n", act.Title, act.Description, dimStyle.Render(act.Timestamp))
		}
	}
}

func (a *App) field(label, value string) {
	fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render(label+":"), value)
}

func (a *App) Notes(ctx context.Context) error {
	a.router.Navigate(common.NotesRoute)
	a.notes.Fetch(ctx)

	notes := a.notes.Items()
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No notes yet. Try 'upload <path>'.")
		return nil
	}
	now := time.Now()
	for _, n := range notes {
		fmt.Fprintf(a.out, "%-8s %-40s %-15s %s\n", n.ID, n.Title, n.NoteType, dimStyle.Render(services.RelativeDate(n.CreatedAt, now)))
	}
	return nil
}

// Upload sends a local file. A trailing "question" marks it as a question
// paper.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("upload <path> [question]")
	}

	noteType := models.NoteTypeGeneral
	if len(args) > 1 && args[len(args)-1] == "question" {
		noteType = models.NoteTypeQuestionPaper
		args = args[:len(args)-1]
	}

	f, err := services.LocalFile(strings.Join(args, " "))
	if err != nil {
		a.toaster.Error("File not found")
		return err
	}

	res, err := a.uploader.Upload(ctx, f, noteType)
	if err != nil {
		if errors.Is(err, common.ErrOperationInProgress) {
			a.toaster.Info("An upload is already in progress")
		}
		return err
	}
	if res != nil && res.NoteID != "" {
		fmt.Fprintf(a.out, "Opening note %s shortly...\n", res.NoteID)
	}
	return nil
}

func (a *App) printProgress(percent int) {
	fmt.Fprintf(a.out, "\rUploading... %3d%%", percent)
	if percent >= 100 {
		fmt.Fprintln(a.out)
	}
}

func (a *App) DeleteNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <noteId>")
	}
	return a.uploader.DeleteNote(ctx, models.ID(args[0]))
}

func (a *App) Folders(ctx context.Context) error {
	a.folders.Fetch(ctx)

	folders := a.folders.Items()
	if len(folders) == 0 {
		fmt.Fprintln(a.out, "No folders yet. Try 'mkfolder <name> [color]'.")
		return nil
	}
	for _, f := range folders {
		fmt.Fprintf(a.out, "%-8s %-30s %-8s %d notes\n", f.ID, f.Name, f.Color, f.NoteCount)
	}
	return nil
}

// MakeFolder creates a folder. The last argument is taken as the color when
// it names one.
func (a *App) MakeFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("mkfolder <name> [color]")
	}
	in := models.FolderInput{}
	if c := models.FolderColor(args[len(args)-1]); len(args) > 1 && c.Valid() {
		in.Color = c
		args = args[:len(args)-1]
	}
	in.Name = strings.Join(args, " ")

	f, err := a.folders.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created folder %s (%s)\n", f.ID, f.Name)
	return nil
}

// RenameFolder keeps the folder's current color.
func (a *App) RenameFolder(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("rnfolder <folderId> <name>")
	}
	id := models.ID(args[0])
	in := models.FolderInput{Name: strings.Join(args[1:], " ")}
	if f, ok := a.folders.Collection().Find(id); ok {
		in.Color = f.Color
	}
	_, err := a.folders.Update(ctx, id, in)
	return err
}

func (a *App) RemoveFolder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("rmfolder <folderId>")
	}
	return a.folders.Delete(ctx, models.ID(args[0]))
}

func (a *App) MoveNote(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("move <noteId> <folderId>")
	}
	return a.folders.MoveNote(ctx, models.ID(args[0]), models.ID(args[1]))
}

func (a *App) BulkAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("bulkadd <folderId> <noteId>...")
	}
	_, err := a.folders.BulkAdd(ctx, models.ID(args[0]), models.IDs(args[1:]...))
	return err
}

func (a *App) FolderNotes(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("foldernotes <folderId>")
	}
	notes := a.folders.FolderNotes(ctx, models.ID(args[0]))
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "This folder is empty.")
		return nil
	}
	for _, n := range notes {
		fmt.Fprintf(a.out, "%-8s %s\n", n.ID, n.Title)
	}
	return nil
}

func (a *App) Flashcards(ctx context.Context) error {
	a.flashcards.Fetch(ctx)

	cards := a.flashcards.Items()
	if len(cards) == 0 {
		fmt.Fprintln(a.out, "No flashcards yet.")
		return nil
	}
	for _, c := range cards {
		fmt.Fprintf(a.out, "%s %s\n  %s\n", labelStyle.Render(string(c.ID)+"."), c.Question, dimStyle.Render(c.Answer))
	}
	return nil
}

func (a *App) DeleteFlashcard(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("rmcard <flashcardId>")
	}
	return a.flashcards.Delete(ctx, models.ID(args[0]))
}

func (a *App) Notifications(ctx context.Context) error {
	a.router.Navigate(common.NotificationsRoute)
	a.dashboard.FetchNotifications(ctx)

	vm := a.dashboard.ViewModel()
	if len(vm.Notifications) == 0 {
		fmt.Fprintln(a.out, "No notifications.")
		return nil
	}
	now := time.Now()
	for _, n := range vm.Notifications {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %-8s %s %s\n", mark, n.ID, n.Title, dimStyle.Render(services.RelativeDate(n.CreatedAt, now)))
		if n.Message != "" {
			fmt.Fprintf(a.out, "           %s\n", n.Message)
		}
	}
	return nil
}

func (a *App) ReadNotification(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("read <notificationId>")
	}
	return a.dashboard.MarkNotificationRead(ctx, models.ID(args[0]))
}

func (a *App) ReadAll(ctx context.Context) error {
	return a.dashboard.MarkAllNotificationsRead(ctx)
}

func (a *App) Preview(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("preview <fileId> <url>")
	}
	p, cached, err := a.previews.Load(ctx, args[0], args[1])
	if err != nil {
		a.toaster.Error("Failed to load preview. Try 'retry'.")
		return err
	}
	a.printPreview(p, cached)
	return nil
}

func (a *App) Retry(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("retry <fileId> <url>")
	}
	p, err := a.previews.Retry(ctx, args[0], args[1])
	if err != nil {
		a.toaster.Error("Failed to load preview")
		return err
	}
	a.printPreview(p, false)
	return nil
}

func (a *App) printPreview(p *models.Preview, cached bool) {
	src := "downloaded"
	if cached {
		src = "cached"
	}
	head := p.DataURL
	if len(head) > 64 {
		head = head[:64] + "..."
	}
	fmt.Fprintf(a.out, "Preview %s: %d bytes (%s)\n%s\n", p.FileID, p.Size, src, dimStyle.Render(head))
}
