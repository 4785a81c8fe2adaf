// Package client contains the transport and local-persistence building
// blocks of the Impify client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): JSON
//     requests, multipart uploads with progress, and a health ping.
//  2. A concrete net/http implementation (see HTTPClient) that targets
//     BaseURL + "/api", injects the bearer token resolved by CredentialStore,
//     tags requests with an X-Request-ID and maps HTTP statuses to sentinel
//     errors.
//  3. Credential storage (CredentialStore) over a persistent and a session
//     key/value store with priority admin > persistent user > session user.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Emergency invalidation
//
// A 401 from any endpoint outside the login/registration flow clears every
// credential key in both stores and publishes a session.Event. The adapter
// never navigates itself; the CLI router subscribes to the bus and moves to
// the auth route at most once.
//
// # Error Handling
//
// Non-2xx responses are *APIError values that unwrap to ErrUnauthorized,
// ErrNotFound, ErrRateLimited, ErrPayloadTooLarge, ErrUnsupportedMediaType,
// ErrServer or ErrRequest. Transport failures and timeouts are
// ErrUnavailable. Nothing is retried.
package client
