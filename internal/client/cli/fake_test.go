package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/config"
	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/client/securestore"
	"github.com/dmitrijs2005/policylogs/internal/client/services"
	"github.com/dmitrijs2005/policylogs/internal/logging"
)

// fakeAPI is an in-memory client.Client. Logs are served on a single page.
type fakeAPI struct {
	mu sync.Mutex

	down     bool
	tagsDown bool
	logs     []models.LogRecord
	tags     []models.Tag
	lastNew  models.NewLog
	lastSrch string
	nextID   int64
}

func (f *fakeAPI) fail() error {
	if f.down {
		return &client.Error{Kind: client.ErrNetwork, Message: "network unavailable, check your connection"}
	}
	return nil
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (models.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return models.LoginResult{}, err
	}
	if password != "secret123" {
		return models.LoginResult{}, &client.Error{Kind: client.ErrAuth, Status: 400, Message: "invalid credentials"}
	}
	return models.LoginResult{Token: "tok", User: models.User{ID: 1, Username: username, FirstName: models.StringPtr("Alice")}}, nil
}

func (f *fakeAPI) Register(ctx context.Context, r models.Registration) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return models.User{}, err
	}
	return models.User{ID: 2, Username: r.Username}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error { return nil }

func (f *fakeAPI) Profile(ctx context.Context) (models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return models.UserProfile{}, err
	}
	return models.UserProfile{User: models.User{ID: 1, Username: "alice", Email: models.StringPtr("alice@example.com")}}, nil
}

func (f *fakeAPI) ListLogs(ctx context.Context, page int, search string) (models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return models.Page{}, err
	}
	f.lastSrch = search
	return models.Page{Count: len(f.logs), Results: append([]models.LogRecord(nil), f.logs...)}, nil
}

func (f *fakeAPI) GetLog(ctx context.Context, id int64) (models.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return models.LogRecord{}, err
	}
	for _, r := range f.logs {
		if r.ID == id {
			return r, nil
		}
	}
	return models.LogRecord{}, &client.Error{Kind: client.ErrNotFound, Status: 404, Message: "not found"}
}

func (f *fakeAPI) CreateLog(ctx context.Context, l models.NewLog) (models.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return models.LogRecord{}, err
	}
	f.lastNew = l
	f.nextID++
	r := models.LogRecord{ID: 100 + f.nextID, Title: l.Title, Description: l.Description, Status: l.Status, AuthorName: "alice"}
	f.logs = append([]models.LogRecord{r}, f.logs...)
	return r, nil
}

func (f *fakeAPI) AddComment(ctx context.Context, logID int64, c models.NewComment) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return models.Comment{}, err
	}
	return models.Comment{ID: 9, Content: c.Content, AuthorName: "alice"}, nil
}

func (f *fakeAPI) MyLogs(ctx context.Context) (models.Page, error) {
	return f.ListLogs(ctx, 1, "")
}

func (f *fakeAPI) ListTags(ctx context.Context) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	if f.tagsDown {
		return nil, &client.Error{Kind: client.ErrServer, Status: 500, Message: "server error (500)"}
	}
	return append([]models.Tag(nil), f.tags...), nil
}

func (f *fakeAPI) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

// newTestApp builds an App over real services and fakeAPI. Input comes
// from in and output is collected in the returned buffer.
func newTestApp(t *testing.T, api *fakeAPI, in string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	logger := logging.Nop()

	session := services.NewSessionManager(ctx, api, securestore.NewMemoryStore(), logger)
	logs := services.NewLogSyncEngine(api, session, nil, logger)

	var out bytes.Buffer
	a := NewApp(&config.Config{ServerBaseURL: "http://example.test/api/"}, session, logs, nil, logger)
	a.reader = bufio.NewReader(strings.NewReader(in))
	a.out = &out
	return a, &out
}

// stubInput replaces the prompt seams with canned answers, consumed in order.
func stubInput(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText, getPassword = origText, origPass
	})

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
}

func sampleLogs() []models.LogRecord {
	return []models.LogRecord{
		{ID: 1, Title: "Remote work", Description: "d1", Status: models.StatusActive, AuthorName: "bob", Tags: []models.Tag{{ID: 1, Name: "hr"}}},
		{ID: 2, Title: "Security", Description: "d2", Status: models.StatusPending, AuthorName: "eve", Document: models.StringPtr("")},
	}
}
