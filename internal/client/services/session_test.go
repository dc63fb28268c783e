package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/client/securestore"
	"github.com/dmitrijs2005/policylogs/internal/common"
	"github.com/dmitrijs2005/policylogs/internal/logging"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func alice() models.User {
	return models.User{ID: 1, Username: "alice", Email: models.StringPtr("alice@example.com"), FirstName: models.StringPtr("Alice")}
}

func newSession(t *testing.T, api *fakeClient, store securestore.Store) *SessionManager {
	t.Helper()
	return NewSessionManager(context.Background(), api, store, logging.Nop())
}

func storedUser(t *testing.T, store securestore.Store) *models.User {
	t.Helper()
	raw, err := store.Get(context.Background(), common.UserKey)
	require.NoError(t, err)
	if raw == nil {
		return nil
	}
	var u models.User
	require.NoError(t, json.Unmarshal(raw, &u))
	return &u
}

func storedToken(t *testing.T, store securestore.Store) string {
	t.Helper()
	raw, err := store.Get(context.Background(), common.TokenKey)
	require.NoError(t, err)
	return string(raw)
}

func requireInvariant(t *testing.T, m *SessionManager) {
	t.Helper()
	s := m.Session()
	require.Equal(t, s.Token != "" && s.User != nil, m.IsAuthenticated())
	_, hasHeader := m.AuthHeader()
	require.Equal(t, s.Token != "", hasHeader)
}

func TestSessionManager_StartupEmpty(t *testing.T) {
	m := newSession(t, &fakeClient{}, securestore.NewMemoryStore())

	require.False(t, m.IsAuthenticated())
	_, ok := m.AuthHeader()
	require.False(t, ok)
	_, ok = m.CurrentUser()
	require.False(t, ok)
}

func TestSessionManager_StartupLoadsPersisted(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	b, _ := json.Marshal(alice())
	require.NoError(t, store.Set(ctx, common.TokenKey, []byte("tok")))
	require.NoError(t, store.Set(ctx, common.UserKey, b))

	m := newSession(t, &fakeClient{}, store)
	require.True(t, m.IsAuthenticated())
	h, ok := m.AuthHeader()
	require.True(t, ok)
	require.Equal(t, "Token tok", h)

	u, ok := m.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "alice", u.Username)
	require.Nil(t, u.LastName)
}

func TestSessionManager_StartupHalfSession(t *testing.T) {
	ctx := context.Background()

	tokenOnly := securestore.NewMemoryStore()
	require.NoError(t, tokenOnly.Set(ctx, common.TokenKey, []byte("tok")))
	m := newSession(t, &fakeClient{}, tokenOnly)
	require.False(t, m.IsAuthenticated())
	requireInvariant(t, m)

	userOnly := securestore.NewMemoryStore()
	b, _ := json.Marshal(alice())
	require.NoError(t, userOnly.Set(ctx, common.UserKey, b))
	m = newSession(t, &fakeClient{}, userOnly)
	require.False(t, m.IsAuthenticated())
	requireInvariant(t, m)
}

func TestSessionManager_StartupCorruptUser(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, common.TokenKey, []byte("tok")))
	require.NoError(t, store.Set(ctx, common.UserKey, []byte("{not json")))

	m := newSession(t, &fakeClient{}, store)
	require.False(t, m.IsAuthenticated())
	require.Equal(t, "tok", m.Session().Token)
}

func TestSessionManager_StartupUnreadableStore(t *testing.T) {
	store := newFailingStore()
	store.failGet = true

	m := newSession(t, &fakeClient{}, store)
	require.False(t, m.IsAuthenticated())
}

func TestSessionManager_LoginSuccess(t *testing.T) {
	store := securestore.NewMemoryStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, store)

	s, err := m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	require.Equal(t, "alice", api.LastUsername)
	require.Equal(t, "secret123", api.LastPassword)

	require.True(t, m.IsAuthenticated())
	require.Equal(t, "tok-1", storedToken(t, store))
	require.Equal(t, "alice", storedUser(t, store).Username)
	requireInvariant(t, m)
}

func TestSessionManager_LoginWrongPassword(t *testing.T) {
	store := securestore.NewMemoryStore()
	api := &fakeClient{LoginErr: &client.Error{Kind: client.ErrAuth, Status: 400, Message: "Unable to log in with provided credentials."}}
	m := newSession(t, api, store)

	_, err := m.Login(context.Background(), "alice", "wrongpass")
	require.ErrorIs(t, err, client.ErrAuth)
	require.Equal(t, "Unable to log in with provided credentials.", UserMessage(err))

	s := m.Session()
	require.Empty(t, s.Token)
	require.Nil(t, s.User)
	require.Empty(t, storedToken(t, store))
	require.Nil(t, storedUser(t, store))
}

func TestSessionManager_LoginFailureKeepsPriorSession(t *testing.T) {
	store := securestore.NewMemoryStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, store)
	_, err := m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	api.LoginErr = errNet
	_, err = m.Login(context.Background(), "bob", "secret123")
	require.ErrorIs(t, err, client.ErrNetwork)

	require.True(t, m.IsAuthenticated())
	require.Equal(t, "tok-1", m.Session().Token)
	require.Equal(t, "tok-1", storedToken(t, store))
}

func TestSessionManager_LoginValidation(t *testing.T) {
	api := &fakeClient{}
	m := newSession(t, api, securestore.NewMemoryStore())

	_, err := m.Login(context.Background(), "  ", "secret123")
	require.ErrorIs(t, err, client.ErrValidation)
	_, err = m.Login(context.Background(), "alice", "")
	require.ErrorIs(t, err, client.ErrValidation)
	require.Zero(t, api.LoginCalls)
}

func TestSessionManager_LoginPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, store)
	_, err := m.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	store.failSet[common.UserKey] = true
	api.LoginRet = models.LoginResult{Token: "tok-2", User: models.User{ID: 2, Username: "bob"}}
	_, err = m.Login(ctx, "bob", "secret123")
	require.Error(t, err)

	// memory untouched, token rolled back in the store
	require.Equal(t, "tok-1", m.Session().Token)
	require.Equal(t, "alice", m.Session().User.Username)
	require.Equal(t, "tok-1", storedToken(t, store))
	requireInvariant(t, m)
}

func TestSessionManager_LoginPersistFailureFromEmpty(t *testing.T) {
	store := newFailingStore()
	store.failSet[common.UserKey] = true
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, store)

	_, err := m.Login(context.Background(), "alice", "secret123")
	require.Error(t, err)
	require.False(t, m.IsAuthenticated())
	require.Empty(t, storedToken(t, store))
}

func TestSessionManager_Register(t *testing.T) {
	api := &fakeClient{RegisterRet: alice()}
	m := newSession(t, api, securestore.NewMemoryStore())

	r := models.Registration{Username: "alice", Email: "alice@example.com", Password: "secret123", PasswordConfirm: "secret123"}
	u, err := m.Register(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, r, api.LastRegister)

	require.False(t, m.IsAuthenticated())
	require.Zero(t, api.LoginCalls)
}

func TestSessionManager_RegisterValidation(t *testing.T) {
	tests := []struct {
		name  string
		r     models.Registration
		field string
	}{
		{"no username", models.Registration{Password: "secret123", PasswordConfirm: "secret123"}, "username"},
		{"bad email", models.Registration{Username: "a", Email: "nope", Password: "secret123", PasswordConfirm: "secret123"}, "email"},
		{"short password", models.Registration{Username: "a", Password: "short", PasswordConfirm: "short"}, "password"},
		{"mismatch", models.Registration{Username: "a", Password: "secret123", PasswordConfirm: "secret124"}, "password_confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeClient{}
			m := newSession(t, api, securestore.NewMemoryStore())

			_, err := m.Register(context.Background(), tt.r)
			require.ErrorIs(t, err, client.ErrValidation)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.field, ve.Field)
			require.Zero(t, api.RegisterCalls)
		})
	}
}

func TestSessionManager_RegisterAndLogin(t *testing.T) {
	api := &fakeClient{
		RegisterRet: alice(),
		LoginRet:    models.LoginResult{Token: "tok-1", User: alice()},
	}
	m := newSession(t, api, securestore.NewMemoryStore())

	r := models.Registration{Username: "alice", Password: "secret123", PasswordConfirm: "secret123"}
	s, err := m.RegisterAndLogin(context.Background(), r)
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	require.Equal(t, "alice", api.LastUsername)
	require.Equal(t, "secret123", api.LastPassword)
}

func TestSessionManager_RegisterFailureSkipsLogin(t *testing.T) {
	api := &fakeClient{RegisterErr: &client.Error{Kind: client.ErrAuth, Message: "username: A user with that username already exists."}}
	m := newSession(t, api, securestore.NewMemoryStore())

	r := models.Registration{Username: "alice", Password: "secret123", PasswordConfirm: "secret123"}
	_, err := m.RegisterAndLogin(context.Background(), r)
	require.ErrorIs(t, err, client.ErrAuth)
	require.Zero(t, api.LoginCalls)
	require.False(t, m.IsAuthenticated())
}

func TestSessionManager_LogoutClearsEvenWhenRemoteFails(t *testing.T) {
	store := securestore.NewMemoryStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}, LogoutErr: errNet}
	m := newSession(t, api, store)
	_, err := m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	m.Logout(context.Background())
	require.Equal(t, 1, api.LogoutCalls)
	require.Equal(t, "Token tok-1", api.LastAuth)
	require.False(t, m.IsAuthenticated())
	require.Empty(t, storedToken(t, store))
	require.Nil(t, storedUser(t, store))

	// idempotent; no token means no remote call
	m.Logout(context.Background())
	require.Equal(t, 1, api.LogoutCalls)
	require.False(t, m.IsAuthenticated())
	requireInvariant(t, m)
}

func TestSessionManager_LogoutStoreFailureStillClearsMemory(t *testing.T) {
	store := newFailingStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, store)
	_, err := m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	store.failDel = true
	m.Logout(context.Background())
	require.False(t, m.IsAuthenticated())
}

func TestSessionManager_RefreshProfile(t *testing.T) {
	store := securestore.NewMemoryStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, store)

	_, err := m.RefreshProfile(context.Background())
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	updated := alice()
	updated.LastName = models.StringPtr("Smith")
	api.ProfileRet = models.UserProfile{User: updated, Department: models.StringPtr("Legal")}

	u, err := m.RefreshProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Smith", *u.LastName)
	require.Equal(t, "Token tok-1", api.LastAuth)

	require.Equal(t, "tok-1", m.Session().Token)
	require.Equal(t, "Smith", *m.Session().User.LastName)
	require.Equal(t, "Smith", *storedUser(t, store).LastName)
}

func TestSessionManager_RefreshProfileFailureKeepsSession(t *testing.T) {
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, securestore.NewMemoryStore())
	_, err := m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	api.ProfileErr = &client.Error{Kind: client.ErrUnauthorized, Status: 401}
	_, err = m.RefreshProfile(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)

	require.True(t, m.IsAuthenticated())
	require.Equal(t, "tok-1", m.Session().Token)
}

func TestSessionManager_RefreshProfileDroppedAfterLogout(t *testing.T) {
	store := securestore.NewMemoryStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, store)
	_, err := m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	api.ProfileRet = models.UserProfile{User: alice()}
	api.ProfileHook = func() { m.Logout(context.Background()) }

	_, err = m.RefreshProfile(context.Background())
	require.ErrorIs(t, err, ErrSessionChanged)
	require.False(t, m.IsAuthenticated())
	require.Nil(t, m.Session().User)
	require.Nil(t, storedUser(t, store))
}

func TestSessionManager_SnapshotsAreCopies(t *testing.T) {
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, securestore.NewMemoryStore())
	_, err := m.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	s := m.Session()
	*s.User.Email = "mallory@example.com"
	s.User.Username = "mallory"

	u, _ := m.CurrentUser()
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "alice@example.com", *u.Email)
}

func TestSessionManager_InvariantAcrossSequences(t *testing.T) {
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok-1", User: alice()}}
	m := newSession(t, api, securestore.NewMemoryStore())
	ctx := context.Background()

	steps := []func(){
		func() { _, _ = m.Login(ctx, "alice", "secret123") },
		func() { _, _ = m.RefreshProfile(ctx) },
		func() { m.Logout(ctx) },
		func() { _, _ = m.RefreshProfile(ctx) },
		func() { api.LoginErr = errNet; _, _ = m.Login(ctx, "alice", "secret123") },
		func() { api.LoginErr = nil; _, _ = m.Login(ctx, "alice", "secret123") },
		func() { api.ProfileErr = errNet; _, _ = m.RefreshProfile(ctx) },
		func() { m.Logout(ctx) },
	}
	api.ProfileRet = models.UserProfile{User: alice()}
	for i, step := range steps {
		step()
		t.Run(fmt.Sprintf("step %d", i), func(t *testing.T) { requireInvariant(t, m) })
	}
}

// Concurrent logins are not single-flight. Each completes, and the session
// ends up matching whichever finished last; store and memory agree.
func TestSessionManager_ConcurrentLoginsLastWins(t *testing.T) {
	store := securestore.NewMemoryStore()
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok", User: alice()}}
	m := newSession(t, api, store)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := m.Login(context.Background(), "alice", "secret123")
			return err
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, 8, api.LoginCalls)
	require.True(t, m.IsAuthenticated())
	require.Equal(t, storedToken(t, store), m.Session().Token)
	require.Equal(t, storedUser(t, store).Username, m.Session().User.Username)
}

func TestUserRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	store := securestore.NewMemoryStore()
	u := alice()
	u.LastName = nil
	api := &fakeClient{LoginRet: models.LoginResult{Token: "tok", User: u}}
	m := newSession(t, api, store)
	_, err := m.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	reloaded := newSession(t, api, store)
	got, ok := reloaded.CurrentUser()
	require.True(t, ok)
	require.Equal(t, u, got)
	require.Nil(t, got.LastName)
}
