package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Touch()

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	AdminLogin(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Consent(ctx context.Context) error
	Logout(ctx context.Context) error

	Dashboard(ctx context.Context) error
	Notes(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	DeleteNote(ctx context.Context, args []string) error
	Folders(ctx context.Context) error
	MakeFolder(ctx context.Context, args []string) error
	RenameFolder(ctx context.Context, args []string) error
	RemoveFolder(ctx context.Context, args []string) error
	MoveNote(ctx context.Context, args []string) error
	BulkAdd(ctx context.Context, args []string) error
	FolderNotes(ctx context.Context, args []string) error
	Flashcards(ctx context.Context) error
	DeleteFlashcard(ctx context.Context, args []string) error
	Notifications(ctx context.Context) error
	ReadNotification(ctx context.Context, args []string) error
	ReadAll(ctx context.Context) error
	Preview(ctx context.Context, args []string) error
	Retry(ctx context.Context, args []string) error
}

const (
	guestHelp = "Available commands: register, login, admin, forgot, reset, exit"
	userHelp  = "Available commands: dashboard, notes, upload <path> [question], delete <noteId>, " +
		"folders, mkfolder <name> [color], rnfolder <id> <name>, rmfolder <id>, move <noteId> <folderId>, " +
		"bulkadd <folderId> <noteId>..., foldernotes <id>, flashcards, rmcard <id>, notifications, " +
		"read <id>, readall, preview <fileId> <url>, retry <fileId> <url>, consent, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit". Commands other than the guest ones require a
// signed-in user.
//
// Handlers report their own failures through toasts; the loop only prints
// usage errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("impify %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		a.Touch()

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		report(dispatch(ctx, a, cmd, args))
	}
}

func report(err error) {
	var usage usageError
	if errors.As(err, &usage) {
		printlnFn(usage.Error())
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(userHelp)
		} else {
			printlnFn(guestHelp)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "admin":
		return a.AdminLogin(ctx)
	case "forgot":
		return a.ForgotPassword(ctx)
	case "reset":
		return a.ResetPassword(ctx)
	}

	if !a.isLoggedIn() {
		printlnFn("Please log in first (type 'login').")
		return nil
	}

	switch cmd {
	case "consent":
		return a.Consent(ctx)
	case "logout":
		return a.Logout(ctx)
	case "dashboard", "d":
		return a.Dashboard(ctx)
	case "notes", "l":
		return a.Notes(ctx)
	case "upload":
		return a.Upload(ctx, args)
	case "delete":
		return a.DeleteNote(ctx, args)
	case "folders":
		return a.Folders(ctx)
	case "mkfolder":
		return a.MakeFolder(ctx, args)
	case "rnfolder":
		return a.RenameFolder(ctx, args)
	case "rmfolder":
		return a.RemoveFolder(ctx, args)
	case "move":
		return a.MoveNote(ctx, args)
	case "bulkadd":
		return a.BulkAdd(ctx, args)
	case "foldernotes":
		return a.FolderNotes(ctx, args)
	case "flashcards":
		return a.Flashcards(ctx)
	case "rmcard":
		return a.DeleteFlashcard(ctx, args)
	case "notifications", "n":
		return a.Notifications(ctx)
	case "read":
		return a.ReadNotification(ctx, args)
	case "readall":
		return a.ReadAll(ctx)
	case "preview":
		return a.Preview(ctx, args)
	case "retry":
		return a.Retry(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}
