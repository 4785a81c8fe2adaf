package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/repositories/kv"
	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
	"github.com/dmitrijs2005/impify/internal/logging"
)

type authFixture struct {
	fc         *fakeClient
	persistent *kv.MemoryRepository
	session    *kv.MemoryRepository
	creds      *client.CredentialStore
	bus        *session.Bus
	notifier   *recNotifier
	svc        AuthService

	mu     sync.Mutex
	events []session.Event
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		fc:         newFakeClient(),
		persistent: kv.NewMemoryRepository(),
		session:    kv.NewMemoryRepository(),
		bus:        session.NewBus(),
		notifier:   &recNotifier{},
	}
	f.creds = client.NewCredentialStore(f.persistent, f.session)
	f.svc = NewAuthService(f.fc, f.creds, f.bus, f.notifier, logging.Discard())
	f.bus.Subscribe(func(e session.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e)
	})
	f.fc.reply(http.MethodPost, api.PostLoginInit, nil, nil)
	f.fc.reply(http.MethodGet, api.ConsentStatus, map[string]any{"consented": true}, nil)
	return f
}

func (f *authFixture) published() []session.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]session.Event(nil), f.events...)
}

func (f *authFixture) waitBackground() {
	f.svc.(*authService).bg.Wait()
}

func (f *authFixture) login(t *testing.T, token string, remember bool) {
	t.Helper()
	f.fc.reply(http.MethodPost, api.Login, map[string]any{
		"token": token,
		"user":  map[string]any{"id": 7, "email": "a@b.c", "name": "Ann"},
	}, nil)
	_, err := f.svc.Login(context.Background(), "a@b.c", []byte("secret"), remember)
	require.NoError(t, err)
	f.waitBackground()
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "7"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-key"))
	require.NoError(t, err)
	return s
}

func TestAuth_LoginRememberedGoesToPersistentStore(t *testing.T) {
	f := newAuthFixture(t)
	password := []byte("secret")
	f.fc.reply(http.MethodPost, api.Login, map[string]any{
		"token": "tok-1",
		"user":  map[string]any{"id": 7, "email": "a@b.c"},
	}, nil)

	u, err := f.svc.Login(context.Background(), "a@b.c", password, true)
	require.NoError(t, err)
	f.waitBackground()

	assert.Equal(t, models.ID("7"), u.ID)
	assert.True(t, f.svc.IsAuthenticated())
	assert.False(t, f.svc.IsAdmin())
	assert.True(t, f.svc.HasConsented())
	assert.Equal(t, make([]byte, len(password)), password, "password buffer is wiped")

	v, _ := f.persistent.Get(context.Background(), common.TokenKey)
	assert.Equal(t, "tok-1", string(v))
	v, _ = f.session.Get(context.Background(), common.TokenKey)
	assert.Nil(t, v)

	calls := f.fc.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, models.LoginRequest{Email: "a@b.c", Password: "secret"}, calls[0].Body)
	assert.Equal(t, 1, f.fc.count(http.MethodPost, api.PostLoginInit))
	assert.Equal(t, 1, f.fc.count(http.MethodGet, api.ConsentStatus))
}

func TestAuth_LoginNotRememberedGoesToSessionStore(t *testing.T) {
	f := newAuthFixture(t)
	f.login(t, "tok-s", false)

	v, _ := f.session.Get(context.Background(), common.TokenKey)
	assert.Equal(t, "tok-s", string(v))
	v, _ = f.persistent.Get(context.Background(), common.TokenKey)
	assert.Nil(t, v)
}

func TestAuth_LoginSucceedsWhenPostLoginInitFails(t *testing.T) {
	f := newAuthFixture(t)
	f.fc.reply(http.MethodPost, api.PostLoginInit, nil, apiError(500, "boom", ""))
	f.login(t, "tok", false)

	assert.True(t, f.svc.IsAuthenticated())
	assert.Empty(t, f.notifier.of("error"))
}

func TestAuth_LoginFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", apiError(401, "Unauthorized", "Invalid email or password"), "Invalid email or password"},
		{"error text", apiError(400, "Email required", ""), "Email required"},
		{"transport", client.ErrUnavailable, "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			f.fc.reply(http.MethodPost, api.Login, nil, tt.err)

			_, err := f.svc.Login(context.Background(), "a@b.c", []byte("x"), true)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, []string{tt.want}, f.notifier.of("error"))
			assert.False(t, f.svc.IsAuthenticated())
			_, err = f.creds.Get(context.Background())
			assert.ErrorIs(t, err, common.ErrNoCredentials)
		})
	}
}

func TestAuth_LoginWithoutTokenIsRejected(t *testing.T) {
	f := newAuthFixture(t)
	f.fc.reply(http.MethodPost, api.Login, map[string]any{"user": map[string]any{"id": 1}}, nil)

	_, err := f.svc.Login(context.Background(), "a@b.c", []byte("x"), false)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.False(t, f.svc.IsAuthenticated())
}

func TestAuth_AdminLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.fc.reply(http.MethodPost, api.AdminLogin, map[string]any{"token": "adm", "user": map[string]any{"id": 1, "role": "admin"}}, nil)

	_, err := f.svc.AdminLogin(context.Background(), "root@b.c", []byte("pw"))
	require.NoError(t, err)
	assert.True(t, f.svc.IsAdmin())

	v, _ := f.persistent.Get(context.Background(), common.AdminTokenKey)
	assert.Equal(t, "adm", string(v))
	assert.Zero(t, f.fc.count(http.MethodPost, api.PostLoginInit))
}

func TestAuth_RegisterFailureUsesServerText(t *testing.T) {
	f := newAuthFixture(t)
	f.fc.reply(http.MethodPost, api.Register, nil, apiError(409, "Email already registered", ""))

	err := f.svc.Register(context.Background(), "a@b.c", []byte("pw"), "Ann")
	assert.ErrorIs(t, err, client.ErrRequest)
	assert.Equal(t, []string{"Email already registered"}, f.notifier.of("error"))
}

func TestAuth_CheckStatus(t *testing.T) {
	t.Run("no credentials skips the network", func(t *testing.T) {
		f := newAuthFixture(t)
		assert.False(t, f.svc.CheckStatus(context.Background()))
		assert.Zero(t, f.fc.count(http.MethodGet, api.Verify))
	})

	t.Run("valid session", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.creds.Set(context.Background(), client.Credentials{Token: "tok", Remember: true}))
		f.fc.reply(http.MethodGet, api.Verify, map[string]any{"valid": true, "user": map[string]any{"id": 9, "email": "z@b.c"}}, nil)

		assert.True(t, f.svc.CheckStatus(context.Background()))
		assert.True(t, f.svc.IsAuthenticated())
		assert.Equal(t, "z@b.c", f.svc.User().Email)

		c, err := f.creds.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.ID("9"), c.User.ID)
	})

	t.Run("rejected session logs out as expired", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.creds.Set(context.Background(), client.Credentials{Token: "tok"}))
		f.fc.reply(http.MethodGet, api.Verify, map[string]any{"valid": false}, nil)

		assert.False(t, f.svc.CheckStatus(context.Background()))
		assert.Equal(t, []string{"Session expired"}, f.notifier.of("error"))
		assert.Equal(t, []session.Event{{Reason: session.ReasonExpired}}, f.published())
		_, err := f.creds.Get(context.Background())
		assert.ErrorIs(t, err, common.ErrNoCredentials)
	})

	t.Run("cancelled check leaves credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.creds.Set(context.Background(), client.Credentials{Token: "tok"}))
		ctx, cancel := context.WithCancel(context.Background())
		f.fc.on(http.MethodGet, api.Verify, func(context.Context, any) (any, error) {
			cancel()
			return nil, context.Canceled
		})

		assert.False(t, f.svc.CheckStatus(ctx))
		assert.Empty(t, f.published())
		_, err := f.creds.Get(context.Background())
		assert.NoError(t, err)
	})
}

func TestAuth_RefreshKeepsStore(t *testing.T) {
	f := newAuthFixture(t)
	f.login(t, "old", false)
	f.fc.reply(http.MethodPost, api.Refresh, map[string]any{"token": "new"}, nil)

	require.NoError(t, f.svc.Refresh(context.Background()))

	v, _ := f.session.Get(context.Background(), common.TokenKey)
	assert.Equal(t, "new", string(v))
	v, _ = f.persistent.Get(context.Background(), common.TokenKey)
	assert.Nil(t, v)
	assert.True(t, f.svc.IsAuthenticated())
}

func TestAuth_RefreshFailureLogsOut(t *testing.T) {
	f := newAuthFixture(t)
	f.login(t, "old", true)
	f.fc.reply(http.MethodPost, api.Refresh, nil, apiError(500, "", ""))

	err := f.svc.Refresh(context.Background())
	assert.ErrorIs(t, err, client.ErrServer)
	assert.False(t, f.svc.IsAuthenticated())
	token, _ := f.creds.Token(context.Background())
	assert.Empty(t, token)
	assert.Equal(t, []session.Event{{Reason: session.ReasonExpired}}, f.published())
}

func TestAuth_LogoutMessages(t *testing.T) {
	tests := []struct {
		reason session.Reason
		kind   string
		msg    string
	}{
		{session.ReasonLogout, "success", "Logged out successfully"},
		{session.ReasonExpired, "error", "Session expired"},
		{session.ReasonInactivity, "info", "Session expired due to inactivity"},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			f := newAuthFixture(t)
			f.login(t, "tok", true)

			f.svc.Logout(context.Background(), tt.reason)

			assert.Equal(t, []string{tt.msg}, f.notifier.of(tt.kind))
			assert.False(t, f.svc.IsAuthenticated())
			assert.Nil(t, f.svc.User())
			assert.False(t, f.svc.HasConsented())
			p, _ := f.persistent.List(context.Background())
			assert.Empty(t, p)
			assert.Equal(t, []session.Event{{Reason: tt.reason}}, f.published())
		})
	}
}

func TestAuth_ForgetsStateOnExternalInvalidation(t *testing.T) {
	f := newAuthFixture(t)
	f.login(t, "tok", true)
	require.True(t, f.svc.IsAuthenticated())

	f.bus.Publish(session.Event{Reason: session.ReasonUnauthorized, Path: api.Notes})

	assert.False(t, f.svc.IsAuthenticated())
	assert.Nil(t, f.svc.User())
}

func TestAuth_UpdateConsentSendsText(t *testing.T) {
	f := newAuthFixture(t)
	f.fc.reply(http.MethodPost, api.ConsentUpdate, nil, nil)

	require.NoError(t, f.svc.UpdateConsent(context.Background(), true))
	require.NoError(t, f.svc.UpdateConsent(context.Background(), false))

	var bodies []any
	for _, c := range f.fc.Calls() {
		if c.Path == api.ConsentUpdate {
			bodies = append(bodies, c.Body)
		}
	}
	assert.Equal(t, []any{
		models.ConsentUpdate{Consented: true, ConsentText: "I consent to AI processing and anonymous data collection for service improvement"},
		models.ConsentUpdate{Consented: false, ConsentText: "Declined AI processing consent"},
	}, bodies)
	assert.False(t, f.svc.HasConsented())
}

func TestAuth_CheckConsentFailureMeansNoConsent(t *testing.T) {
	f := newAuthFixture(t)
	f.fc.reply(http.MethodGet, api.ConsentStatus, nil, client.ErrUnavailable)
	assert.False(t, f.svc.CheckConsent(context.Background()))
}

func TestAuth_RefreshDue(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		token   func(t *testing.T) string
		want    bool
		wantErr error
	}{
		{"expires soon", func(t *testing.T) string { return signedToken(t, now.Add(time.Hour)) }, true, nil},
		{"already expired", func(t *testing.T) string { return signedToken(t, now.Add(-time.Hour)) }, true, nil},
		{"far from expiry", func(t *testing.T) string { return signedToken(t, now.Add(72*time.Hour)) }, false, nil},
		{"no expiry claim", func(t *testing.T) string { return signedToken(t, time.Time{}) }, false, nil},
		{"not a jwt", func(*testing.T) string { return "opaque-token" }, false, common.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			require.NoError(t, f.creds.Set(context.Background(), client.Credentials{Token: tt.token(t), Remember: true}))

			due, err := f.svc.RefreshDue(context.Background(), now, 24*time.Hour)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, due)
		})
	}

	t.Run("no token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RefreshDue(context.Background(), now, time.Hour)
		assert.ErrorIs(t, err, common.ErrNoCredentials)
	})
}
