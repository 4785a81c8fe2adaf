// Package api names the REST operations of the Impify backend. Paths are
// relative to the "/api" prefix that the HTTP client prepends.
package api

import "net/url"

const (
	Login          = "/auth/login"
	Register       = "/auth/register"
	Verify         = "/auth/verify"
	Refresh        = "/auth/refresh"
	ForgotPassword = "/auth/forgot-password"
	ResetPassword  = "/auth/reset-password"
	PostLoginInit  = "/auth/post-login-init"
	AdminLogin     = "/admin/auth/login"

	Notes          = "/notes"
	NotesUpload    = "/notes/upload"
	DashboardStats = "/dashboard/stats"
	QuotaStatus    = "/quota/status"
	TokenInfo      = "/user/token-info"

	Folders = "/folders"

	Flashcards = "/flashcards"

	Notifications            = "/notifications"
	NotificationsMarkAllRead = "/notifications/mark-all-read"

	ConsentStatus = "/consent/status"
	ConsentUpdate = "/consent/update"

	Health = "/"
)

func seg(id string) string { return url.PathEscape(id) }

func NoteByID(id string) string { return Notes + "/" + seg(id) }

func FolderByID(id string) string { return Folders + "/" + seg(id) }

func FolderNotes(id string) string { return FolderByID(id) + "/notes" }

func FolderMoveNote(folderID, noteID string) string {
	return FolderNotes(folderID) + "/" + seg(noteID)
}

func FolderBulkAddNotes(folderID string) string { return FolderNotes(folderID) + "/bulk" }

func FlashcardByID(id string) string { return Flashcards + "/" + seg(id) }

func NotificationRead(id string) string { return Notifications + "/" + seg(id) + "/read" }

// authFlow lists endpoints whose 401 responses describe the attempt itself
// (bad password, expired reset link) rather than a dead session.
var authFlow = map[string]struct{}{
	Login:          {},
	Register:       {},
	Refresh:        {},
	ForgotPassword: {},
	ResetPassword:  {},
	AdminLogin:     {},
}

// IsAuthFlow reports whether a 401 from path must not invalidate the session.
func IsAuthFlow(path string) bool {
	_, ok := authFlow[path]
	return ok
}
