package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/client/transport"
	"github.com/dmitrijs2005/policylogs/internal/logging"
	"golang.org/x/sync/errgroup"
)

// FetchState is the collection fetch state: Idle, Fetching or Errored.
type FetchState int

const (
	Idle FetchState = iota
	Fetching
	Errored
)

func (s FetchState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("FetchState(%d)", int(s))
}

// LogState is a point-in-time copy of the engine's state.
type LogState struct {
	Logs []models.LogRecord
	Tags []models.Tag
	// Page is the next page LoadMore will request.
	Page             int
	HasMore          bool
	State            FetchState
	HasError         bool
	LastErrorMessage string
	// Seeded is set while the collection holds placeholder records.
	Seeded bool
}

// LogService is what the front end needs from the sync engine.
type LogService interface {
	Snapshot() LogState
	Changes() <-chan struct{}
	Refresh(ctx context.Context) error
	LoadMore(ctx context.Context) error
	RefreshAll(ctx context.Context) error
	FetchOne(ctx context.Context, id int64) (models.LogRecord, error)
	Create(ctx context.Context, l models.NewLog) (models.LogRecord, error)
	AddComment(ctx context.Context, logID int64, content string) (models.Comment, error)
	Search(ctx context.Context, query string) ([]models.LogRecord, error)
	MyLogs(ctx context.Context) ([]models.LogRecord, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	Reset()
}

// LogSyncEngine owns the resident collection and its pagination cursor.
//
// Refresh and LoadMore are single-flight: a call made while either is in
// progress returns nil without doing anything. All state changes happen
// under mu after the network call returns.
type LogSyncEngine struct {
	api    client.Client
	auth   Authorizer
	seed   SeedProvider
	logger logging.Logger

	changes chan struct{}

	mu       sync.Mutex
	logs     []models.LogRecord
	tags     []models.Tag
	page     int
	hasMore  bool
	state    FetchState
	errMsg   string
	hasError bool
	seeded   bool
	// gen invalidates in-flight fetches when Reset is called.
	gen uint64
}

var _ LogService = (*LogSyncEngine)(nil)

// NewLogSyncEngine builds an engine. auth may be nil for unauthenticated
// use; seed may be nil to disable the placeholder fallback.
func NewLogSyncEngine(api client.Client, auth Authorizer, seed SeedProvider, logger logging.Logger) *LogSyncEngine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LogSyncEngine{
		api:     api,
		auth:    auth,
		seed:    seed,
		logger:  logger.With("component", "logsync"),
		changes: make(chan struct{}, 1),
		logs:    []models.LogRecord{},
		tags:    []models.Tag{},
		page:    1,
		hasMore: true,
	}
}

func (e *LogSyncEngine) authorized(ctx context.Context) context.Context {
	if e.auth == nil {
		return ctx
	}
	h, _ := e.auth.AuthHeader()
	return transport.WithAuthorization(ctx, h)
}

// Changes delivers a signal after every state change. Signals coalesce:
// a slow reader sees at least one after the latest change.
func (e *LogSyncEngine) Changes() <-chan struct{} {
	return e.changes
}

func (e *LogSyncEngine) notify() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

// Snapshot returns a deep copy of the engine state, safe to keep and read
// without locking.
func (e *LogSyncEngine) Snapshot() LogState {
	e.mu.Lock()
	defer e.mu.Unlock()

	logs := make([]models.LogRecord, len(e.logs))
	for i, r := range e.logs {
		logs[i] = r.Clone()
	}
	return LogState{
		Logs:             logs,
		Tags:             append([]models.Tag{}, e.tags...),
		Page:             e.page,
		HasMore:          e.hasMore,
		State:            e.state,
		HasError:         e.hasError,
		LastErrorMessage: e.errMsg,
		Seeded:           e.seeded,
	}
}

// begin enters Fetching. It reports false when a fetch is already running,
// or, for load-more, when there is nothing further to load.
func (e *LogSyncEngine) begin(loadMore bool) (gen uint64, page int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Fetching {
		return 0, 0, false
	}
	if loadMore && !e.hasMore {
		return 0, 0, false
	}
	e.state = Fetching
	e.hasError = false
	e.errMsg = ""
	if loadMore {
		page = e.page
	} else {
		page = 1
	}
	return e.gen, page, true
}

// setError records err for passive observers. Callers hold mu.
func (e *LogSyncEngine) setError(err error) {
	e.hasError = true
	e.errMsg = UserMessage(err)
}

func (e *LogSyncEngine) recordError(err error) {
	e.mu.Lock()
	e.setError(err)
	e.mu.Unlock()
	e.notify()
}

// Refresh fetches page 1 and replaces the collection with it. On failure
// the collection is kept; if it was empty, the seed records are shown.
func (e *LogSyncEngine) Refresh(ctx context.Context) error {
	gen, _, ok := e.begin(false)
	if !ok {
		return nil
	}
	e.notify()
	defer e.notify()

	p, err := e.api.ListLogs(e.authorized(ctx), 1, "")

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return nil
	}

	if err != nil {
		e.state = Errored
		e.setError(err)
		if len(e.logs) == 0 && e.seed != nil {
			if seed := e.seed.Seed(); len(seed) > 0 {
				e.logs = appendUnique(nil, seed)
				e.seeded = true
				e.hasMore = false
				e.logger.Info(ctx, "showing placeholder records", "count", len(e.logs))
			}
		}
		e.logger.Warn(ctx, "refresh failed", "op", "refresh", "err", err)
		return fmt.Errorf("refresh logs error: %w", err)
	}

	e.logs = appendUnique(nil, p.Results)
	e.page = 2
	e.hasMore = p.HasNext()
	e.state = Idle
	e.seeded = false
	return nil
}

// LoadMore appends the next page, dropping records already resident.
func (e *LogSyncEngine) LoadMore(ctx context.Context) error {
	gen, page, ok := e.begin(true)
	if !ok {
		return nil
	}
	e.notify()
	defer e.notify()

	p, err := e.api.ListLogs(e.authorized(ctx), page, "")

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return nil
	}

	if err != nil {
		e.state = Errored
		e.setError(err)
		e.logger.Warn(ctx, "load more failed", "op", "load_more", "page", page, "err", err)
		return fmt.Errorf("load more logs error: %w", err)
	}

	e.logs = appendUnique(e.logs, p.Results)
	e.page = page + 1
	e.hasMore = p.HasNext()
	e.state = Idle
	return nil
}

// appendUnique appends the records of add whose ids are not yet in dst,
// keeping the first occurrence.
func appendUnique(dst, add []models.LogRecord) []models.LogRecord {
	seen := make(map[int64]struct{}, len(dst)+len(add))
	for _, r := range dst {
		seen[r.ID] = struct{}{}
	}
	if dst == nil {
		dst = make([]models.LogRecord, 0, len(add))
	}
	for _, r := range add {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		dst = append(dst, r.Clone())
	}
	return dst
}

// RefreshAll refreshes the collection and the tag list concurrently. A
// failure of either is left in the snapshot once both have finished.
func (e *LogSyncEngine) RefreshAll(ctx context.Context) error {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()

	var (
		g                errgroup.Group
		logsErr, tagsErr error
	)
	g.Go(func() error {
		logsErr = e.Refresh(ctx)
		return nil
	})
	g.Go(func() error {
		_, tagsErr = e.ListTags(ctx)
		return nil
	})
	_ = g.Wait()

	err := errors.Join(logsErr, tagsErr)
	if err == nil {
		return nil
	}
	e.mu.Lock()
	if gen == e.gen {
		e.setError(err)
	}
	e.mu.Unlock()
	e.notify()
	return err
}

// FetchOne reads a single record without touching the collection.
func (e *LogSyncEngine) FetchOne(ctx context.Context, id int64) (models.LogRecord, error) {
	r, err := e.api.GetLog(e.authorized(ctx), id)
	if err != nil {
		e.recordError(err)
		return models.LogRecord{}, fmt.Errorf("fetch log %d error: %w", id, err)
	}
	return r, nil
}

// Create sends a new record and, once the server accepted it, puts it at
// the front of the collection. An empty status means pending.
func (e *LogSyncEngine) Create(ctx context.Context, l models.NewLog) (models.LogRecord, error) {
	if l.Status == "" {
		l.Status = models.DefaultStatus
	}
	if err := validateNewLog(l); err != nil {
		return models.LogRecord{}, err
	}
	l.Status = l.Status.Classify()
	if l.TagIDs == nil {
		l.TagIDs = []int64{}
	}

	r, err := e.api.CreateLog(e.authorized(ctx), l)
	if err != nil {
		e.recordError(err)
		return models.LogRecord{}, fmt.Errorf("create log error: %w", err)
	}

	e.mu.Lock()
	rest := make([]models.LogRecord, 0, len(e.logs)+1)
	rest = append(rest, r.Clone())
	for _, x := range e.logs {
		if x.ID != r.ID {
			rest = append(rest, x)
		}
	}
	e.logs = rest
	e.mu.Unlock()
	e.notify()

	e.logger.Info(ctx, "log created", "id", r.ID)
	return r, nil
}

// AddComment posts a comment. When the log is resident, the returned
// comment is appended to it; otherwise the collection is left alone.
func (e *LogSyncEngine) AddComment(ctx context.Context, logID int64, content string) (models.Comment, error) {
	if err := validateComment(content); err != nil {
		return models.Comment{}, err
	}

	c, err := e.api.AddComment(e.authorized(ctx), logID, models.NewComment{Content: strings.TrimSpace(content)})
	if err != nil {
		e.recordError(err)
		return models.Comment{}, fmt.Errorf("add comment error: %w", err)
	}

	e.mu.Lock()
	resident := false
	for i := range e.logs {
		if e.logs[i].ID == logID {
			e.logs[i].Comments = append(e.logs[i].Comments, c)
			e.logs[i].CommentCount++
			resident = true
			break
		}
	}
	e.mu.Unlock()
	if resident {
		e.notify()
	}
	return c, nil
}

// Search runs a server-side filtered query on page 1. The resident
// collection is not affected.
func (e *LogSyncEngine) Search(ctx context.Context, query string) ([]models.LogRecord, error) {
	p, err := e.api.ListLogs(e.authorized(ctx), 1, strings.TrimSpace(query))
	if err != nil {
		e.recordError(err)
		return nil, fmt.Errorf("search logs error: %w", err)
	}
	return appendUnique(nil, p.Results), nil
}

// MyLogs lists the records created by the current user.
func (e *LogSyncEngine) MyLogs(ctx context.Context) ([]models.LogRecord, error) {
	p, err := e.api.MyLogs(e.authorized(ctx))
	if err != nil {
		e.recordError(err)
		return nil, fmt.Errorf("my logs error: %w", err)
	}
	return appendUnique(nil, p.Results), nil
}

// ListTags replaces the known tag set. A failure keeps the previous set.
func (e *LogSyncEngine) ListTags(ctx context.Context) ([]models.Tag, error) {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()

	tags, err := e.api.ListTags(e.authorized(ctx))
	if err != nil {
		e.logger.Warn(ctx, "tag list failed", "op", "list_tags", "err", err)
		e.recordError(err)
		return nil, fmt.Errorf("list tags error: %w", err)
	}

	e.mu.Lock()
	if gen == e.gen {
		e.tags = append([]models.Tag{}, tags...)
	}
	e.mu.Unlock()
	e.notify()

	return append([]models.Tag{}, tags...), nil
}

// Reset drops all resident data, e.g. after logout. Fetches still in
// flight are discarded when they return.
func (e *LogSyncEngine) Reset() {
	e.mu.Lock()
	e.gen++
	e.logs = []models.LogRecord{}
	e.tags = []models.Tag{}
	e.page = 1
	e.hasMore = true
	e.state = Idle
	e.hasError = false
	e.errMsg = ""
	e.seeded = false
	e.mu.Unlock()
	e.notify()
}
