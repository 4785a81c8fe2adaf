// Package common contains shared constants, sentinel errors and small helpers
// used across Impify client components.
package common

// AuthorizationHeaderName carries the bearer credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token value in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName tags every outbound request with a unique id.
const RequestIDHeaderName = "X-Request-ID"

// Client-side routes the data layer navigates to.
const (
	AuthRoute          = "/auth"
	DashboardRoute     = "/dashboard"
	NotesRoute         = "/notes"
	NotificationsRoute = "/notifications"
)

// NoteRoute returns the route of a single note.
func NoteRoute(id string) string {
	return NotesRoute[:len(NotesRoute)-1] + "/" + id
}

// Keys of the browser-style key/value stores holding credentials.
const (
	TokenKey      = "token"
	UserKey       = "user"
	AdminTokenKey = "admin_token"
	AdminUserKey  = "admin_user"
)
