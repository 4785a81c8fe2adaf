package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/impify/internal/client/client"
)

type call struct {
	Method string
	Path   string
	Body   any
}

type handler func(ctx context.Context, body any) (any, error)

// fakeClient routes Do calls by "METHOD path" and round-trips responses
// through JSON so decoding matches the real client.
type fakeClient struct {
	mu       sync.Mutex
	handlers map[string]handler
	calls    []call

	uploadFn func(ctx context.Context, path string, u client.Upload, onProgress func(int)) (any, error)
	pingErr  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]handler)}
}

func (f *fakeClient) on(method, path string, h handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

func (f *fakeClient) reply(method, path string, resp any, err error) {
	f.on(method, path, func(context.Context, any) (any, error) { return resp, err })
}

func (f *fakeClient) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeClient) count(method, path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func decodeInto(resp, out any) error {
	if out == nil || resp == nil {
		return nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeClient) Do(ctx context.Context, method, path string, in, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: method, Path: path, Body: in})
	h := f.handlers[method+" "+path]
	f.mu.Unlock()

	if h == nil {
		return &client.APIError{StatusCode: 404, ErrorText: "no route " + method + " " + path}
	}
	resp, err := h(ctx, in)
	if err != nil {
		return err
	}
	return decodeInto(resp, out)
}

func (f *fakeClient) Upload(ctx context.Context, path string, u client.Upload, onProgress func(int), out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: "UPLOAD", Path: path, Body: u.Fields})
	fn := f.uploadFn
	f.mu.Unlock()

	if fn == nil {
		return &client.APIError{StatusCode: 500}
	}
	resp, err := fn(ctx, path, u, onProgress)
	if err != nil {
		return err
	}
	return decodeInto(resp, out)
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func apiError(status int, errText, msg string) error {
	return &client.APIError{StatusCode: status, ErrorText: errText, Message: msg}
}

type toast struct {
	Kind string
	Msg  string
}

type recNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (r *recNotifier) add(kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast{kind, msg})
}

func (r *recNotifier) Success(msg string) { r.add("success", msg) }
func (r *recNotifier) Info(msg string)    { r.add("info", msg) }
func (r *recNotifier) Error(msg string)   { r.add("error", msg) }

func (r *recNotifier) all() []toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toast(nil), r.toasts...)
}

func (r *recNotifier) of(kind string) []string {
	var out []string
	for _, t := range r.all() {
		if t.Kind == kind {
			out = append(out, t.Msg)
		}
	}
	return out
}

type recNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recNavigator) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}
