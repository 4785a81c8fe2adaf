package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
	"github.com/dmitrijs2005/impify/internal/logging"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// HTTPClient talks JSON to the REST API under baseURL + "/api".
//
// Every request carries the token resolved by the CredentialStore. A 401 on
// any endpoint outside the login/registration flow is an emergency
// invalidation: both stores are cleared and a session.Event is published.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	creds   *CredentialStore
	bus     *session.Bus
	log     logging.Logger

	invalidateMu sync.Mutex
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration, creds *CredentialStore, bus *session.Bus, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
		bus:     bus,
		log:     log.With("component", "http_client"),
	}
}

func (c *HTTPClient) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.exec(ctx, req, path, out)
}

func (c *HTTPClient) Upload(ctx context.Context, path string, u Upload, onProgress func(percent int), out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(u.Fields))
	for k := range u.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := w.WriteField(k, u.Fields[k]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	part, err := w.CreateFormFile("file", u.FileName)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, u.Content); err != nil {
		return fmt.Errorf("failed to read %s: %w", u.FileName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	body := newProgressReader(buf.Bytes(), onProgress)
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	req.ContentLength = int64(buf.Len())
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.exec(ctx, req, path, out)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, api.Health, nil, nil)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	token, err := c.creds.Token(ctx)
	if err != nil {
		c.log.Warn(ctx, "credential lookup failed", "error", err)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, nil
}

func (c *HTTPClient) exec(ctx context.Context, req *http.Request, path string, out any) error {
	reqID := req.Header.Get(common.RequestIDHeaderName)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn(ctx, "request failed", "method", req.Method, "path", path, "request_id", reqID, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request finished",
		"method", req.Method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && !api.IsAuthFlow(path) {
			c.invalidate(ctx, path)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var envelope struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	e := &APIError{StatusCode: status}
	if json.Unmarshal(data, &envelope) == nil {
		if s, ok := envelope.Error.(string); ok {
			e.ErrorText = s
		}
		e.Message = envelope.Message
	}
	return e
}

// invalidate clears both stores and announces the dead session. Concurrent
// 401s are serialized so each one observes fully cleared storage.
func (c *HTTPClient) invalidate(ctx context.Context, path string) {
	c.invalidateMu.Lock()
	defer c.invalidateMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if err := c.creds.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear credentials", "error", err)
	}
	c.log.Warn(ctx, "session invalidated", "path", path)
	c.bus.Publish(session.Event{Reason: session.ReasonUnauthorized, Path: path})
}

// IsUnavailable reports whether err is a transport failure or timeout.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
