// Package services contains the client's stateful engines: the session
// manager that owns the token and current user, and the log sync engine
// that owns the resident policy-log collection.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/client/securestore"
	"github.com/dmitrijs2005/policylogs/internal/client/transport"
	"github.com/dmitrijs2005/policylogs/internal/common"
	"github.com/dmitrijs2005/policylogs/internal/logging"
)

// Session is the authenticated identity. A token without a user (or the
// other way round) is not authenticated.
type Session struct {
	Token string
	User  *models.User
}

// Authenticated reports whether both the token and the user are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

func (s Session) clone() Session {
	if s.User != nil {
		u := cloneUser(*s.User)
		s.User = &u
	}
	return s
}

func cloneUser(u models.User) models.User {
	c := u
	c.Email = cloneString(u.Email)
	c.FirstName = cloneString(u.FirstName)
	c.LastName = cloneString(u.LastName)
	return c
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Authorizer supplies the Authorization header value for outgoing calls.
type Authorizer interface {
	AuthHeader() (string, bool)
}

// SessionService is what the front end needs from the session owner.
type SessionService interface {
	Authorizer
	Login(ctx context.Context, username, password string) (Session, error)
	Register(ctx context.Context, r models.Registration) (models.User, error)
	RegisterAndLogin(ctx context.Context, r models.Registration) (Session, error)
	Logout(ctx context.Context)
	RefreshProfile(ctx context.Context) (models.User, error)
	Session() Session
	CurrentUser() (models.User, bool)
	IsAuthenticated() bool
}

// SessionManager owns the Session. Reads are served from memory; every
// change is written through to the store before it becomes visible.
type SessionManager struct {
	api    client.Client
	store  securestore.Store
	logger logging.Logger

	// mutate serialises store write-through + swap so that the store and
	// the in-memory copy never disagree.
	mutate sync.Mutex

	mu      sync.RWMutex
	session Session
}

var _ SessionService = (*SessionManager)(nil)

// NewSessionManager loads the persisted session once. Unreadable or
// malformed values are logged and treated as absent.
func NewSessionManager(ctx context.Context, api client.Client, store securestore.Store, logger logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Nop()
	}
	m := &SessionManager{
		api:    api,
		store:  store,
		logger: logger.With("component", "session"),
	}
	m.session = m.load(ctx)
	return m
}

func (m *SessionManager) load(ctx context.Context) Session {
	var s Session

	token, err := m.store.Get(ctx, common.TokenKey)
	if err != nil {
		m.logger.Warn(ctx, "cannot read persisted token", "op", "load", "err", err)
	} else {
		s.Token = string(token)
	}

	raw, err := m.store.Get(ctx, common.UserKey)
	switch {
	case err != nil:
		m.logger.Warn(ctx, "cannot read persisted user", "op", "load", "err", err)
	case raw != nil:
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			m.logger.Warn(ctx, "persisted user is malformed", "op", "load", "err", err)
		} else {
			s.User = &u
		}
	}

	m.logger.Debug(ctx, "session loaded", "authenticated", s.Authenticated())
	return s
}

// Session returns a copy of the current session.
func (m *SessionManager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.clone()
}

// CurrentUser returns the cached user, if any. It never touches the network.
func (m *SessionManager) CurrentUser() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.User == nil {
		return models.User{}, false
	}
	return cloneUser(*m.session.User), true
}

// IsAuthenticated reports whether a token and a user are both held in memory.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Authenticated()
}

// AuthHeader returns "Token <token>", or false when there is no token.
func (m *SessionManager) AuthHeader() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.Token == "" {
		return "", false
	}
	return common.AuthScheme + " " + m.session.Token, true
}

func (m *SessionManager) authorized(ctx context.Context) context.Context {
	h, _ := m.AuthHeader()
	return transport.WithAuthorization(ctx, h)
}

// Login authenticates and persists the new session. On any failure the
// previous session stays in place, in memory and in the store.
func (m *SessionManager) Login(ctx context.Context, username, password string) (Session, error) {
	if err := validateCredentials(username, password); err != nil {
		return Session{}, err
	}

	res, err := m.api.Login(ctx, username, password)
	if err != nil {
		return Session{}, fmt.Errorf("login error: %w", err)
	}

	next := Session{Token: res.Token, User: &res.User}

	m.mutate.Lock()
	defer m.mutate.Unlock()

	prev := m.Session()
	if err := m.persist(ctx, next); err != nil {
		m.restore(ctx, prev)
		return Session{}, fmt.Errorf("session saving error: %w", err)
	}
	m.swap(next)

	m.logger.Info(ctx, "logged in", "username", res.User.Username)
	return next.clone(), nil
}

// Register creates the account. It does not log in.
func (m *SessionManager) Register(ctx context.Context, r models.Registration) (models.User, error) {
	if err := validateRegistration(r); err != nil {
		return models.User{}, err
	}
	u, err := m.api.Register(ctx, r)
	if err != nil {
		return models.User{}, fmt.Errorf("register error: %w", err)
	}
	m.logger.Info(ctx, "registered", "username", u.Username)
	return u, nil
}

// RegisterAndLogin registers and, only if that succeeded, logs in with the
// same credentials.
func (m *SessionManager) RegisterAndLogin(ctx context.Context, r models.Registration) (Session, error) {
	if _, err := m.Register(ctx, r); err != nil {
		return Session{}, err
	}
	return m.Login(ctx, r.Username, r.Password)
}

// Logout tells the server and clears local state. A remote failure is
// logged and otherwise ignored; local state is always cleared.
func (m *SessionManager) Logout(ctx context.Context) {
	if _, ok := m.AuthHeader(); ok {
		if err := m.api.Logout(m.authorized(ctx)); err != nil {
			m.logger.Warn(ctx, "remote logout failed", "op", "logout", "err", err)
		}
	}

	m.mutate.Lock()
	defer m.mutate.Unlock()

	if err := m.store.Delete(ctx, common.TokenKey); err != nil {
		m.logger.Warn(ctx, "cannot delete persisted token", "op", "logout", "err", err)
	}
	if err := m.store.Delete(ctx, common.UserKey); err != nil {
		m.logger.Warn(ctx, "cannot delete persisted user", "op", "logout", "err", err)
	}
	m.swap(Session{})

	m.logger.Info(ctx, "logged out")
}

// RefreshProfile replaces the current user with the server's copy. The
// token is never touched; a failure leaves the session as it was.
func (m *SessionManager) RefreshProfile(ctx context.Context) (models.User, error) {
	before := m.Session()
	if before.Token == "" {
		return models.User{}, common.ErrNotAuthenticated
	}

	p, err := m.api.Profile(m.authorized(ctx))
	if err != nil {
		m.logger.Warn(ctx, "profile refresh failed", "op", "refresh_profile", "err", err)
		return models.User{}, fmt.Errorf("profile refresh error: %w", err)
	}

	m.mutate.Lock()
	defer m.mutate.Unlock()

	cur := m.Session()
	if cur.Token != before.Token {
		return models.User{}, ErrSessionChanged
	}

	next := Session{Token: cur.Token, User: &p.User}
	if err := m.saveUser(ctx, p.User); err != nil {
		m.restore(ctx, cur)
		return models.User{}, fmt.Errorf("session saving error: %w", err)
	}
	m.swap(next)

	return cloneUser(p.User), nil
}

func (m *SessionManager) swap(s Session) {
	s = s.clone()
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
}

func (m *SessionManager) saveUser(ctx context.Context, u models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return m.store.Set(ctx, common.UserKey, b)
}

func (m *SessionManager) persist(ctx context.Context, s Session) error {
	if err := m.store.Set(ctx, common.TokenKey, []byte(s.Token)); err != nil {
		return err
	}
	return m.saveUser(ctx, *s.User)
}

// restore puts the store back to s after a failed write. Errors here are
// only logged: the caller already reports the original failure.
func (m *SessionManager) restore(ctx context.Context, s Session) {
	var err error
	if s.Token == "" {
		err = m.store.Delete(ctx, common.TokenKey)
	} else {
		err = m.store.Set(ctx, common.TokenKey, []byte(s.Token))
	}
	if err != nil {
		m.logger.Warn(ctx, "cannot restore persisted token", "op", "restore", "err", err)
	}

	if s.User == nil {
		err = m.store.Delete(ctx, common.UserKey)
	} else {
		err = m.saveUser(ctx, *s.User)
	}
	if err != nil {
		m.logger.Warn(ctx, "cannot restore persisted user", "op", "restore", "err", err)
	}
}
