package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/impify/internal/client/api"
	"github.com/dmitrijs2005/impify/internal/client/client"
	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
	"github.com/dmitrijs2005/impify/internal/logging"
)

const consentText = "I consent to AI processing and anonymous data collection for service improvement"
const declineText = "Declined AI processing consent"

// AuthService is the authentication context of the client.
//
// Contract:
//   - Login/AdminLogin: authenticate and store credentials. Login also fires
//     the post-login initialization without waiting for it and loads the
//     consent status.
//   - CheckStatus: verify stored credentials with the server; an invalid or
//     failing check logs out with "Session expired".
//   - Refresh: exchange the token for a new one, written to the store that
//     held the old one. Failure logs out.
//   - Logout: clear both stores and in-memory state, then publish a
//     session.Event.
//
// The HTTP client may end the session on its own after a 401; AuthService
// follows by subscribing to the session bus.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte, remember bool) (*models.User, error)
	AdminLogin(ctx context.Context, email string, password []byte) (*models.User, error)
	Register(ctx context.Context, email string, password []byte, name string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, newPassword []byte) error
	CheckStatus(ctx context.Context) bool
	Refresh(ctx context.Context) error
	Logout(ctx context.Context, reason session.Reason)
	CheckConsent(ctx context.Context) bool
	UpdateConsent(ctx context.Context, consented bool) error
	UpdateUser(ctx context.Context, u *models.User) error
	// RefreshDue reports whether the stored token expires within window.
	RefreshDue(ctx context.Context, now time.Time, window time.Duration) (bool, error)
	Ping(ctx context.Context) error

	IsAuthenticated() bool
	IsAdmin() bool
	User() *models.User
	HasConsented() bool

	// Touch records user activity for the inactivity timeout.
	Touch()
	LastActivity() time.Time
}

type authService struct {
	client   client.Client
	creds    *client.CredentialStore
	bus      *session.Bus
	notifier Notifier
	log      logging.Logger
	now      func() time.Time

	mu            sync.RWMutex
	user          *models.User
	authenticated bool
	admin         bool
	consented     bool
	lastActivity  time.Time

	bg sync.WaitGroup
}

// NewAuthService constructs an AuthService bound to the API client, the
// credential store and the session bus.
func NewAuthService(c client.Client, creds *client.CredentialStore, bus *session.Bus, n Notifier, log logging.Logger) AuthService {
	a := &authService{
		client:   c,
		creds:    creds,
		bus:      bus,
		notifier: n,
		log:      log.With("service", "auth"),
		now:      time.Now,
	}
	a.lastActivity = a.now()
	bus.Subscribe(func(session.Event) { a.forget() })
	return a
}

// failureText prefers the server's "message", then "error", then fallback.
func failureText(err error, fallback string) string {
	if apiErr, ok := client.AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.ErrorText != "" {
			return apiErr.ErrorText
		}
	}
	return fallback
}

func (a *authService) Login(ctx context.Context, email string, password []byte, remember bool) (*models.User, error) {
	defer common.WipeByteArray(password)

	var resp models.AuthResponse
	err := a.client.Do(ctx, http.MethodPost, api.Login, models.LoginRequest{Email: email, Password: string(password)}, &resp)
	if err != nil {
		a.log.Warn(ctx, "login failed", "email", email, "error", err)
		a.notifier.Error(failureText(err, "Login failed"))
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		a.notifier.Error("Login failed")
		return nil, fmt.Errorf("login: %w", common.ErrInvalidToken)
	}

	if err := a.creds.Set(ctx, client.Credentials{Token: resp.Token, User: resp.User, Remember: remember}); err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}
	a.setSession(resp.User, false)

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		bgCtx := context.WithoutCancel(ctx)
		if err := a.client.Do(bgCtx, http.MethodPost, api.PostLoginInit, nil, nil); err != nil {
			a.log.Debug(bgCtx, "post-login init failed", "error", err)
		}
	}()

	a.CheckConsent(ctx)
	return resp.User, nil
}

func (a *authService) AdminLogin(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	var resp models.AuthResponse
	err := a.client.Do(ctx, http.MethodPost, api.AdminLogin, models.LoginRequest{Email: email, Password: string(password)}, &resp)
	if err != nil {
		a.log.Warn(ctx, "admin login failed", "email", email, "error", err)
		msg := client.ServerMessage(err)
		if msg == "" {
			msg = "Admin login failed"
		}
		a.notifier.Error(msg)
		return nil, fmt.Errorf("admin login: %w", err)
	}
	if resp.Token == "" {
		a.notifier.Error("Admin login failed")
		return nil, fmt.Errorf("admin login: %w", common.ErrInvalidToken)
	}

	if err := a.creds.Set(ctx, client.Credentials{Token: resp.Token, User: resp.User, Admin: true}); err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}
	a.setSession(resp.User, true)
	return resp.User, nil
}

func (a *authService) Register(ctx context.Context, email string, password []byte, name string) error {
	defer common.WipeByteArray(password)

	err := a.client.Do(ctx, http.MethodPost, api.Register,
		models.RegisterRequest{Email: email, Password: string(password), Name: name}, nil)
	if err != nil {
		a.log.Warn(ctx, "registration failed", "email", email, "error", err)
		a.notifier.Error(failureText(err, "Registration failed"))
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	err := a.client.Do(ctx, http.MethodPost, api.ForgotPassword, map[string]string{"email": email}, nil)
	if err != nil {
		a.notifier.Error(failureText(err, "Failed to send reset email"))
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

func (a *authService) ResetPassword(ctx context.Context, token string, newPassword []byte) error {
	defer common.WipeByteArray(newPassword)

	err := a.client.Do(ctx, http.MethodPost, api.ResetPassword,
		map[string]string{"token": token, "new_password": string(newPassword)}, nil)
	if err != nil {
		a.notifier.Error(failureText(err, "Failed to reset password"))
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (a *authService) CheckStatus(ctx context.Context) bool {
	creds, err := a.creds.Get(ctx)
	if errors.Is(err, common.ErrNoCredentials) {
		return false
	}
	if err != nil {
		a.log.Error(ctx, "failed to read credentials", "error", err)
		return false
	}

	var resp models.VerifyResponse
	err = a.client.Do(ctx, http.MethodGet, api.Verify, nil, &resp)
	if ctx.Err() != nil {
		return false
	}
	if err != nil || !resp.Valid {
		a.log.Warn(ctx, "stored session rejected", "error", err)
		a.Logout(ctx, session.ReasonExpired)
		return false
	}

	if resp.User != nil {
		if err := a.creds.UpdateUser(ctx, resp.User); err != nil {
			a.log.Warn(ctx, "failed to store verified user", "error", err)
		}
	}
	a.setSession(resp.User, creds.Admin)
	a.CheckConsent(ctx)
	return true
}

func (a *authService) Refresh(ctx context.Context) error {
	var resp models.AuthResponse
	err := a.client.Do(ctx, http.MethodPost, api.Refresh, nil, &resp)
	if err == nil && resp.Token == "" {
		err = common.ErrInvalidToken
	}
	if err != nil {
		a.log.Warn(ctx, "token refresh failed", "error", err)
		a.Logout(ctx, session.ReasonExpired)
		return fmt.Errorf("refresh: %w", err)
	}

	if err := a.creds.UpdateToken(ctx, resp.Token); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}
	if resp.User != nil {
		if err := a.creds.UpdateUser(ctx, resp.User); err != nil {
			return fmt.Errorf("store refreshed user: %w", err)
		}
		a.mu.Lock()
		a.user = resp.User
		a.mu.Unlock()
	}
	a.log.Info(ctx, "token refreshed")
	return nil
}

func (a *authService) Logout(ctx context.Context, reason session.Reason) {
	if err := a.creds.Clear(context.WithoutCancel(ctx)); err != nil {
		a.log.Error(ctx, "failed to clear credentials", "error", err)
	}
	a.forget()

	switch reason {
	case session.ReasonExpired:
		a.notifier.Error("Session expired")
	case session.ReasonInactivity:
		a.notifier.Info("Session expired due to inactivity")
	default:
		a.notifier.Success("Logged out successfully")
	}
	a.bus.Publish(session.Event{Reason: reason})
}

func (a *authService) CheckConsent(ctx context.Context) bool {
	var resp models.ConsentStatus
	err := a.client.Do(ctx, http.MethodGet, api.ConsentStatus, nil, &resp)
	if err != nil {
		a.log.Warn(ctx, "consent status check failed", "error", err)
		resp.Consented = false
	}
	a.mu.Lock()
	a.consented = resp.Consented
	a.mu.Unlock()
	return resp.Consented
}

func (a *authService) UpdateConsent(ctx context.Context, consented bool) error {
	text := declineText
	if consented {
		text = consentText
	}
	err := a.client.Do(ctx, http.MethodPost, api.ConsentUpdate,
		models.ConsentUpdate{Consented: consented, ConsentText: text}, nil)
	if err != nil {
		a.notifier.Error(failureText(err, "Failed to update consent"))
		return fmt.Errorf("update consent: %w", err)
	}
	a.mu.Lock()
	a.consented = consented
	a.mu.Unlock()
	return nil
}

func (a *authService) UpdateUser(ctx context.Context, u *models.User) error {
	if err := a.creds.UpdateUser(ctx, u); err != nil && !errors.Is(err, common.ErrNoCredentials) {
		return err
	}
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
	return nil
}

func (a *authService) RefreshDue(ctx context.Context, now time.Time, window time.Duration) (bool, error) {
	token, err := a.creds.Token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, common.ErrNoCredentials
	}

	// The signature belongs to the server; only the expiry is read here.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return false, nil
	}
	return exp.Sub(now) <= window, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) setSession(u *models.User, admin bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
	a.authenticated = true
	a.admin = admin
	a.lastActivity = a.now()
}

// forget drops in-memory session state without touching storage.
func (a *authService) forget() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = nil
	a.authenticated = false
	a.admin = false
	a.consented = false
}

func (a *authService) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authenticated
}

func (a *authService) IsAdmin() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.admin
}

func (a *authService) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

func (a *authService) HasConsented() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.consented
}

func (a *authService) Touch() {
	a.mu.Lock()
	a.lastActivity = a.now()
	a.mu.Unlock()
}

func (a *authService) LastActivity() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastActivity
}
