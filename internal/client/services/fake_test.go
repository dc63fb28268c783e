package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/client/securestore"
	"github.com/dmitrijs2005/policylogs/internal/client/transport"
)

// ---- fake client ----

type fakeClient struct {
	mu sync.Mutex

	LoginRet models.LoginResult
	LoginErr error

	RegisterRet models.User
	RegisterErr error

	LogoutErr error

	ProfileRet models.UserProfile
	ProfileErr error
	// ProfileHook, when set, runs before Profile returns.
	ProfileHook func()

	// Pages is keyed by page number; missing pages return an empty page.
	Pages    map[int]models.Page
	ListErr  error
	ListHook func(page int, search string)

	GetRet models.LogRecord
	GetErr error

	CreateRet models.LogRecord
	CreateErr error

	CommentRet models.Comment
	CommentErr error

	MyRet models.Page
	MyErr error

	TagsRet []models.Tag
	TagsErr error

	// call log
	LoginCalls    int
	RegisterCalls int
	LogoutCalls   int
	ListCalls     int
	LastAuth      string
	LastPage      int
	LastSearch    string
	LastNewLog    models.NewLog
	LastComment   models.NewComment
	LastCommentOn int64
	LastUsername  string
	LastPassword  string
	LastRegister  models.Registration
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) note(ctx context.Context) {
	f.LastAuth = transport.AuthorizationFrom(ctx)
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (models.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastUsername, f.LastPassword = username, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, r models.Registration) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls++
	f.LastRegister = r
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.note(ctx)
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) Profile(ctx context.Context) (models.UserProfile, error) {
	f.mu.Lock()
	f.note(ctx)
	hook := f.ProfileHook
	ret, err := f.ProfileRet, f.ProfileErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return ret, err
}

func (f *fakeClient) ListLogs(ctx context.Context, page int, search string) (models.Page, error) {
	f.mu.Lock()
	f.note(ctx)
	f.ListCalls++
	f.LastPage, f.LastSearch = page, search
	hook := f.ListHook
	f.mu.Unlock()

	if hook != nil {
		hook(page, search)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return models.Page{}, f.ListErr
	}
	return f.Pages[page], nil
}

func (f *fakeClient) GetLog(ctx context.Context, id int64) (models.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.note(ctx)
	return f.GetRet, f.GetErr
}

func (f *fakeClient) CreateLog(ctx context.Context, l models.NewLog) (models.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.note(ctx)
	f.LastNewLog = l
	return f.CreateRet, f.CreateErr
}

func (f *fakeClient) AddComment(ctx context.Context, logID int64, c models.NewComment) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.note(ctx)
	f.LastCommentOn, f.LastComment = logID, c
	return f.CommentRet, f.CommentErr
}

func (f *fakeClient) MyLogs(ctx context.Context) (models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.note(ctx)
	return f.MyRet, f.MyErr
}

func (f *fakeClient) ListTags(ctx context.Context) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.note(ctx)
	return f.TagsRet, f.TagsErr
}

// ---- fake store ----

// failingStore wraps a MemoryStore and fails Set for chosen keys.
type failingStore struct {
	*securestore.MemoryStore
	failSet map[string]bool
	failGet bool
	failDel bool
}

var errStoreBroken = errors.New("store broken")

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: securestore.NewMemoryStore(), failSet: map[string]bool{}}
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet {
		return nil, errStoreBroken
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet[key] {
		return errStoreBroken
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if s.failDel {
		return errStoreBroken
	}
	return s.MemoryStore.Delete(ctx, key)
}

// ---- helpers ----

type staticAuth string

func (a staticAuth) AuthHeader() (string, bool) { return string(a), a != "" }

func rec(id int64) models.LogRecord {
	return models.LogRecord{
		ID:          id,
		Title:       "log",
		Description: "d",
		Status:      models.StatusPending,
		Tags:        []models.Tag{},
		Comments:    []models.Comment{},
	}
}

func page(next bool, ids ...int64) models.Page {
	p := models.Page{Count: len(ids)}
	for _, id := range ids {
		p.Results = append(p.Results, rec(id))
	}
	if next {
		n := "http://localhost:8000/api/policy-logs/?page=next"
		p.Next = &n
	}
	return p
}

func ids(logs []models.LogRecord) []int64 {
	out := make([]int64, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.ID)
	}
	return out
}

var errNet = &client.Error{Kind: client.ErrNetwork, Message: "network unavailable, check your connection"}
