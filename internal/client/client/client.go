package client

import (
	"context"

	"github.com/dmitrijs2005/policylogs/internal/client/models"
)

// Client is the policy-log REST API. Authenticated calls take the
// Authorization value from ctx (see transport.WithAuthorization).
type Client interface {
	Login(ctx context.Context, username, password string) (models.LoginResult, error)
	Register(ctx context.Context, r models.Registration) (models.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (models.UserProfile, error)

	ListLogs(ctx context.Context, page int, search string) (models.Page, error)
	GetLog(ctx context.Context, id int64) (models.LogRecord, error)
	CreateLog(ctx context.Context, l models.NewLog) (models.LogRecord, error)
	AddComment(ctx context.Context, logID int64, c models.NewComment) (models.Comment, error)
	MyLogs(ctx context.Context) (models.Page, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}
