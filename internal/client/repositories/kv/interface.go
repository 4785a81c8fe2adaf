// Package kv provides the browser-style key/value stores that back the
// credential store: a persistent SQLite store (survives restarts, the
// "remember me" store) and a process-local memory store (the session store).
package kv

import (
	"context"
)

// Repository is a string-keyed byte store. Get returns (nil, nil) when the
// key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// Apply writes set and removes del as one atomic change.
	Apply(ctx context.Context, set map[string][]byte, del []string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
