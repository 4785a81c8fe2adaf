package client

import (
	"context"
	"io"
)

// Client is the transport contract the services depend on.
type Client interface {
	// Do sends in as JSON (when non-nil) and decodes a 2xx body into out
	// (when non-nil).
	Do(ctx context.Context, method, path string, in, out any) error
	// Upload posts a multipart form. onProgress receives strictly
	// increasing percentages as the transport consumes the body.
	Upload(ctx context.Context, path string, u Upload, onProgress func(percent int), out any) error
	Ping(ctx context.Context) error
}

// Upload describes a multipart form with a single file part named "file".
type Upload struct {
	FileName string
	Content  io.Reader
	Fields   map[string]string
}
