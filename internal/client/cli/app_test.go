package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/config"
	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/repositories/kv"
	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
	"github.com/dmitrijs2005/impify/internal/logging"
)

// backend is an httptest server with per-route handlers. Unknown routes
// answer 404. Handlers run one at a time under mu, so state they capture
// can be read through locked.
type backend struct {
	srv *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{routes: map[string]http.HandlerFunc{}, hits: map[string]int{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hits[key]++
		h := b.routes[key]
		if h == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
			return
		}
		h(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" /api"+path] = h
}

func (b *backend) json(method, path string, status int, v any) {
	b.handle(method, path, func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, status, v) })
}

func (b *backend) locked(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

func (b *backend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" /api"+path]
}

type memPreviews struct {
	mu sync.Mutex
	m  map[string]models.Preview
}

func (r *memPreviews) Get(_ context.Context, id string) (*models.Preview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.m[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *memPreviews) Put(_ context.Context, p *models.Preview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[p.FileID] = *p
	return nil
}

func (r *memPreviews) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

type testApp struct {
	*App
	backend *backend
	creds   *client.CredentialStore
	out     *syncBuffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	b := newBackend(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RedirectDelay = 10 * time.Millisecond

	creds := client.NewCredentialStore(kv.NewMemoryRepository(), kv.NewMemoryRepository())
	bus := session.NewBus()
	out := &syncBuffer{}

	a := newApp(context.Background(), cfg, logging.Discard(), deps{
		client:     client.NewHTTPClient(b.srv.URL, 2*time.Second, creds, bus, logging.Discard()),
		creds:      creds,
		bus:        bus,
		previews:   &memPreviews{m: map[string]models.Preview{}},
		httpClient: b.srv.Client(),
	}, bytes.NewReader(nil), out)
	t.Cleanup(func() { _ = a.Close() })

	return &testApp{App: a, backend: b, creds: creds, out: out}
}

func stubPrompts(t *testing.T, text string, password []byte, confirm bool) {
	t.Helper()
	origST, origGP, origGC := getSimpleText, getPassword, getConfirmation
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return text, nil }
	getPassword = func(io.Writer, string) ([]byte, error) { return append([]byte(nil), password...), nil }
	getConfirmation = func(*bufio.Reader, string, io.Writer) (bool, error) { return confirm, nil }
	t.Cleanup(func() {
		getSimpleText, getPassword, getConfirmation = origST, origGP, origGC
	})
}

func (ta *testApp) login(t *testing.T) {
	t.Helper()
	ta.backend.json(http.MethodPost, api.Login, http.StatusOK, map[string]any{
		"token": "tok", "user": map[string]any{"id": 1, "email": "a@b.c", "name": "Ann"},
	})
	ta.backend.json(http.MethodPost, api.PostLoginInit, http.StatusOK, map[string]any{})
	ta.backend.json(http.MethodGet, api.ConsentStatus, http.StatusOK, map[string]any{"consented": true})
	ta.backend.json(http.MethodGet, api.Notes, http.StatusOK, map[string]any{"notes": []map[string]any{
		{"id": 1, "title": "Cell biology", "note_type": "general", "created_at": time.Now().UTC().Format(time.RFC3339)},
	}})

	stubPrompts(t, "a@b.c", []byte("pw"), true)
	require.NoError(t, ta.Login(context.Background()))
}

func TestApp_LoginShowsDashboard(t *testing.T) {
	ta := newTestApp(t)
	ta.backend.json(http.MethodGet, api.TokenInfo, http.StatusOK, map[string]any{"level": 3, "xp": 120, "current_tokens": 40})
	ta.login(t)

	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, common.DashboardRoute, ta.router.Current())
	token, err := ta.creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	out := ta.out.String()
	assert.Contains(t, out, "Welcome back, Ann!")
	assert.Contains(t, out, "Dashboard")
	assert.Contains(t, out, "Cell biology")
	assert.Contains(t, out, "Today")
	assert.Equal(t, "(a@b.c /dashboard)", ta.getStatus())
}

func TestApp_LoginAsksForConsentWhenMissing(t *testing.T) {
	ta := newTestApp(t)
	ta.login(t)

	var sent models.ConsentUpdate
	ta.backend.json(http.MethodGet, api.ConsentStatus, http.StatusOK, map[string]any{"consented": false})
	ta.backend.handle(http.MethodPost, api.ConsentUpdate, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	require.NoError(t, ta.Login(context.Background()))
	ta.backend.locked(func() {
		assert.True(t, sent.Consented)
		assert.Equal(t, "I consent to AI processing and anonymous data collection for service improvement", sent.ConsentText)
	})
	assert.True(t, ta.authService.HasConsented())
}

func TestApp_UnauthorizedReturnsToAuthOnce(t *testing.T) {
	ta := newTestApp(t)
	ta.login(t)
	for _, p := range []string{api.Notes, api.DashboardStats, api.QuotaStatus, api.Notifications, api.Flashcards, api.TokenInfo} {
		ta.backend.json(http.MethodGet, p, http.StatusUnauthorized, map[string]any{"error": "Token expired"})
	}

	require.NoError(t, ta.Dashboard(context.Background()))

	history := ta.router.History()
	assert.Equal(t, common.AuthRoute, ta.router.Current())
	auth := 0
	for _, r := range history {
		if r == common.AuthRoute {
			auth++
		}
	}
	assert.Equal(t, 1, auth)

	token, err := ta.creds.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.False(t, ta.isLoggedIn())
	assert.Empty(t, ta.notes.Items())
}

func TestApp_LoginFailureStaysOnAuth(t *testing.T) {
	ta := newTestApp(t)
	ta.backend.json(http.MethodPost, api.Login, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
	stubPrompts(t, "a@b.c", []byte("bad"), false)

	err := ta.Login(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, common.AuthRoute, ta.router.Current())
	assert.Empty(t, ta.router.History())
	assert.Contains(t, ta.out.String(), "Invalid credentials")
}

func TestApp_LogoutResetsViews(t *testing.T) {
	ta := newTestApp(t)
	ta.login(t)
	require.NoError(t, ta.Notes(context.Background()))
	require.NotEmpty(t, ta.notes.Items())

	require.NoError(t, ta.Logout(context.Background()))

	assert.Equal(t, common.AuthRoute, ta.router.Current())
	assert.Empty(t, ta.notes.Items())
	assert.Nil(t, ta.dashboard.ViewModel().TokenInfo)
	assert.Contains(t, ta.out.String(), "Logged out successfully")
}

func TestApp_MakeFolderParsesColor(t *testing.T) {
	ta := newTestApp(t)
	var bodies []models.FolderInput
	ta.backend.handle(http.MethodPost, api.Folders, func(w http.ResponseWriter, r *http.Request) {
		var in models.FolderInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		bodies = append(bodies, in)
		writeJSON(w, http.StatusCreated, map[string]any{"folder": map[string]any{"id": len(bodies), "name": in.Name, "color": in.Color}})
	})

	require.NoError(t, ta.MakeFolder(context.Background(), []string{"Cell", "biology", "green"}))
	require.NoError(t, ta.MakeFolder(context.Background(), []string{"green"}))
	assert.ErrorAs(t, ta.MakeFolder(context.Background(), nil), new(usageError))

	ta.backend.locked(func() {
		assert.Equal(t, []models.FolderInput{
			{Name: "Cell biology", Color: models.FolderColor("green")},
			{Name: "green", Color: models.FolderColor("blue")},
		}, bodies)
	})
	assert.Len(t, ta.folders.Items(), 2)
}

func TestApp_RenameFolderKeepsColor(t *testing.T) {
	ta := newTestApp(t)
	ta.backend.json(http.MethodGet, api.Folders, http.StatusOK, map[string]any{"folders": []map[string]any{
		{"id": 4, "name": "Old", "color": "purple"},
	}})
	var sent models.FolderInput
	ta.backend.handle(http.MethodPut, api.FolderByID("4"), func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		writeJSON(w, http.StatusOK, map[string]any{"folder": map[string]any{"id": 4, "name": sent.Name, "color": sent.Color}})
	})

	require.NoError(t, ta.Folders(context.Background()))
	require.NoError(t, ta.RenameFolder(context.Background(), []string{"4", "New", "name"}))

	ta.backend.locked(func() {
		assert.Equal(t, models.FolderInput{Name: "New name", Color: models.FolderColor("purple")}, sent)
	})
}

func TestApp_UploadRedirectsToNewNote(t *testing.T) {
	ta := newTestApp(t)
	var noteType string
	ta.backend.handle(http.MethodPost, api.NotesUpload, func(w http.ResponseWriter, r *http.Request) {
		noteType = r.FormValue("note_type")
		writeJSON(w, http.StatusOK, map[string]any{"note": map[string]any{"id": 5}})
	})

	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 exam"), 0o600))

	require.NoError(t, ta.Upload(context.Background(), []string{path, "question"}))

	ta.backend.locked(func() { assert.Equal(t, "question_paper", noteType) })
	assert.Eventually(t, func() bool { return ta.router.Current() == common.NoteRoute("5") }, time.Second, 5*time.Millisecond)
	out := ta.out.String()
	assert.Contains(t, out, "Uploading... 100%")
	assert.Contains(t, out, "Question paper analyzed successfully!")
}

func TestApp_UploadRejectsBadFiles(t *testing.T) {
	ta := newTestApp(t)

	assert.ErrorAs(t, ta.Upload(context.Background(), nil), new(usageError))

	path := filepath.Join(t.TempDir(), "notes.exe")
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0o600))
	err := ta.Upload(context.Background(), []string{path})
	require.Error(t, err)
	assert.Zero(t, ta.backend.count(http.MethodPost, api.NotesUpload))
	assert.Contains(t, ta.out.String(), "File type not supported")

	err = ta.Upload(context.Background(), []string{filepath.Join(t.TempDir(), "missing.pdf")})
	require.Error(t, err)
}

func TestApp_PreviewUsesCache(t *testing.T) {
	ta := newTestApp(t)
	hits := 0
	ta.backend.locked(func() {
		ta.backend.routes["GET /files/1"] = func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7"))
		}
	})
	url := ta.backend.srv.URL + "/files/1"

	require.NoError(t, ta.Preview(context.Background(), []string{"f1", url}))
	require.NoError(t, ta.Preview(context.Background(), []string{"f1", url}))
	require.NoError(t, ta.Retry(context.Background(), []string{"f1", url}))

	ta.backend.locked(func() { assert.Equal(t, 2, hits) })
	out := ta.out.String()
	assert.Contains(t, out, "(downloaded)")
	assert.Contains(t, out, "(cached)")
}

func TestApp_CheckOnline(t *testing.T) {
	ta := newTestApp(t)
	ta.backend.json(http.MethodGet, api.Health, http.StatusOK, map[string]any{"status": "ok"})

	ta.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, ta.mode())
	assert.Equal(t, "(online /auth)", ta.getStatus())

	ta.backend.srv.Close()
	ta.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, ta.mode())
}

func TestApp_NotificationsMarkRead(t *testing.T) {
	ta := newTestApp(t)
	ta.backend.json(http.MethodGet, api.Notifications, http.StatusOK, map[string]any{"notifications": []map[string]any{
		{"id": 1, "title": "Flashcards ready", "is_read": false},
		{"id": 2, "title": "Welcome", "is_read": true},
	}})
	ta.backend.json(http.MethodPatch, api.NotificationRead("1"), http.StatusOK, map[string]any{})

	require.NoError(t, ta.Notifications(context.Background()))
	assert.Equal(t, common.NotificationsRoute, ta.router.Current())
	assert.Contains(t, ta.out.String(), "You have 1 new notification!")

	require.NoError(t, ta.ReadNotification(context.Background(), []string{"1"}))
	assert.Equal(t, 0, ta.dashboard.UnreadCount())
}
