package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/client/transport"
)

const (
	pathLogin    = "auth/login/"
	pathRegister = "auth/register/"
	pathLogout   = "auth/logout/"
	pathProfile  = "auth/profile/"
	pathLogs     = "policy-logs/"
	pathMyLogs   = "policy-logs/my_logs/"
	pathTags     = "tags/"
)

func logPath(id int64) string {
	return pathLogs + strconv.FormatInt(id, 10) + "/"
}

func commentPath(id int64) string {
	return logPath(id) + "add_comment/"
}

// RESTClient implements Client over a Transport. Every failure is an *Error.
type RESTClient struct {
	t transport.Transport
}

// NewRESTClient returns a client that sends requests through t.
func NewRESTClient(t transport.Transport) *RESTClient {
	return &RESTClient{t: t}
}

func (c *RESTClient) do(ctx context.Context, req *transport.Request, out any) error {
	return mapError(req.Path, c.t.Do(ctx, req, out))
}

// Login exchanges credentials for a token. An empty token is a decode error.
func (c *RESTClient) Login(ctx context.Context, username, password string) (models.LoginResult, error) {
	var res models.LoginResult
	err := c.do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   pathLogin,
		Body:   models.Credentials{Username: username, Password: password},
	}, &res)
	if err != nil {
		return models.LoginResult{}, err
	}
	if res.Token == "" {
		return models.LoginResult{}, &Error{Kind: ErrDecode, Message: "login response has no token"}
	}
	return res, nil
}

// Register creates an account. It does not log in.
func (c *RESTClient) Register(ctx context.Context, r models.Registration) (models.User, error) {
	var u models.User
	err := c.do(ctx, &transport.Request{Method: http.MethodPost, Path: pathRegister, Body: r}, &u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Logout invalidates the token carried by ctx.
func (c *RESTClient) Logout(ctx context.Context) error {
	return c.do(ctx, &transport.Request{Method: http.MethodPost, Path: pathLogout}, nil)
}

// Profile fetches the authenticated user and profile extras.
func (c *RESTClient) Profile(ctx context.Context) (models.UserProfile, error) {
	var p models.UserProfile
	if err := c.do(ctx, &transport.Request{Method: http.MethodGet, Path: pathProfile}, &p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

// ListLogs fetches one page of logs. page is at least 1 and an empty search
// is omitted.
func (c *RESTClient) ListLogs(ctx context.Context, page int, search string) (models.Page, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{"page": {strconv.Itoa(page)}}
	if search != "" {
		q.Set("search", search)
	}

	var p models.Page
	if err := c.do(ctx, &transport.Request{Method: http.MethodGet, Path: pathLogs, Query: q}, &p); err != nil {
		return models.Page{}, err
	}
	return p, nil
}

// GetLog fetches one log with its comments.
func (c *RESTClient) GetLog(ctx context.Context, id int64) (models.LogRecord, error) {
	var r models.LogRecord
	if err := c.do(ctx, &transport.Request{Method: http.MethodGet, Path: logPath(id)}, &r); err != nil {
		return models.LogRecord{}, err
	}
	return r, nil
}

// CreateLog creates a log. A nil tag list is sent as [].
func (c *RESTClient) CreateLog(ctx context.Context, l models.NewLog) (models.LogRecord, error) {
	if l.TagIDs == nil {
		l.TagIDs = []int64{}
	}
	var r models.LogRecord
	if err := c.do(ctx, &transport.Request{Method: http.MethodPost, Path: pathLogs, Body: l}, &r); err != nil {
		return models.LogRecord{}, err
	}
	return r, nil
}

// AddComment posts a comment on logID.
func (c *RESTClient) AddComment(ctx context.Context, logID int64, nc models.NewComment) (models.Comment, error) {
	var cm models.Comment
	if err := c.do(ctx, &transport.Request{Method: http.MethodPost, Path: commentPath(logID), Body: nc}, &cm); err != nil {
		return models.Comment{}, err
	}
	return cm, nil
}

// MyLogs fetches the logs created by the current user.
func (c *RESTClient) MyLogs(ctx context.Context) (models.Page, error) {
	var p models.Page
	if err := c.do(ctx, &transport.Request{Method: http.MethodGet, Path: pathMyLogs}, &p); err != nil {
		return models.Page{}, err
	}
	return p, nil
}

// ListTags fetches all tags.
func (c *RESTClient) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.do(ctx, &transport.Request{Method: http.MethodGet, Path: pathTags}, &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}
