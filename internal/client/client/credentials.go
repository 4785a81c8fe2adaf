package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/repositories/kv"
	"github.com/dmitrijs2005/impify/internal/common"
)

// Credentials is what a successful login leaves behind.
type Credentials struct {
	Token string
	User  *models.User
	// Admin credentials live under the admin keys of the persistent store.
	Admin bool
	// Remember selects the persistent store for user credentials; otherwise
	// they go to the session store and die with the process.
	Remember bool
}

// CredentialStore resolves the bearer token across the two key/value stores
// with priority admin token > persistent user token > session user token.
// All methods serialize on one mutex.
type CredentialStore struct {
	mu         sync.Mutex
	persistent kv.Repository
	session    kv.Repository
}

func NewCredentialStore(persistent, session kv.Repository) *CredentialStore {
	return &CredentialStore{persistent: persistent, session: session}
}

type slot struct {
	repo     kv.Repository
	tokenKey string
	userKey  string
	admin    bool
	remember bool
}

func (s *CredentialStore) slots() []slot {
	return []slot{
		{repo: s.persistent, tokenKey: common.AdminTokenKey, userKey: common.AdminUserKey, admin: true, remember: true},
		{repo: s.persistent, tokenKey: common.TokenKey, userKey: common.UserKey, remember: true},
		{repo: s.session, tokenKey: common.TokenKey, userKey: common.UserKey},
	}
}

// active returns the highest-priority slot holding a token. Caller holds mu.
func (s *CredentialStore) active(ctx context.Context) (*slot, string, error) {
	for _, sl := range s.slots() {
		v, err := sl.repo.Get(ctx, sl.tokenKey)
		if err != nil {
			return nil, "", err
		}
		if len(v) > 0 {
			return &sl, string(v), nil
		}
	}
	return nil, "", nil
}

// Token returns the bearer token to send, or "" when none is stored.
func (s *CredentialStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, token, err := s.active(ctx)
	return token, err
}

// Get returns the active credentials or common.ErrNoCredentials.
func (s *CredentialStore) Get(ctx context.Context) (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, token, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	if sl == nil {
		return nil, common.ErrNoCredentials
	}

	c := &Credentials{Token: token, Admin: sl.admin, Remember: sl.remember}
	raw, err := sl.repo.Get(ctx, sl.userKey)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("failed to decode stored user: %w", err)
		}
		c.User = &u
	}
	return c, nil
}

func (s *CredentialStore) target(c Credentials) slot {
	switch {
	case c.Admin:
		return s.slots()[0]
	case c.Remember:
		return s.slots()[1]
	default:
		return s.slots()[2]
	}
}

// Set writes token and user into the store selected by c in one change.
func (s *CredentialStore) Set(ctx context.Context, c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.target(c)
	set, del, err := userChange(sl, c.User)
	if err != nil {
		return err
	}
	set[sl.tokenKey] = []byte(c.Token)
	return sl.repo.Apply(ctx, set, del)
}

func userChange(sl slot, u *models.User) (map[string][]byte, []string, error) {
	if u == nil {
		return map[string][]byte{}, []string{sl.userKey}, nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, nil, err
	}
	return map[string][]byte{sl.userKey: raw}, nil, nil
}

// UpdateToken replaces the token in whichever store currently holds it.
func (s *CredentialStore) UpdateToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, _, err := s.active(ctx)
	if err != nil {
		return err
	}
	if sl == nil {
		return common.ErrNoCredentials
	}
	return sl.repo.Set(ctx, sl.tokenKey, []byte(token))
}

// UpdateUser replaces the stored user next to the active token.
func (s *CredentialStore) UpdateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, _, err := s.active(ctx)
	if err != nil {
		return err
	}
	if sl == nil {
		return common.ErrNoCredentials
	}
	set, del, err := userChange(*sl, u)
	if err != nil {
		return err
	}
	return sl.repo.Apply(ctx, set, del)
}

// Clear removes every token and user key from both stores.
func (s *CredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistent.Delete(ctx, common.TokenKey, common.UserKey, common.AdminTokenKey, common.AdminUserKey); err != nil {
		return err
	}
	return s.session.Delete(ctx, common.TokenKey, common.UserKey, common.AdminTokenKey, common.AdminUserKey)
}
