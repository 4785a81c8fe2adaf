// Package cli provides the interactive Impify command-line client.
//
// It wires configuration, local storage, the API client and the services,
// and runs a REPL over them. A Router tracks the current client route and
// returns the user to the sign-in route whenever the session ends; a
// Toaster prints the services' toasts.
//
// Background goroutines started by App.Root ping the server (online/offline
// mode), poll notifications and token info, and enforce the inactivity
// timeout. They stop when the REPL exits.
package cli
