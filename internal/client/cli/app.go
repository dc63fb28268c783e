package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/policylogs/internal/client/client"
	"github.com/dmitrijs2005/policylogs/internal/client/config"
	"github.com/dmitrijs2005/policylogs/internal/client/services"
	"github.com/dmitrijs2005/policylogs/internal/logging"
)

// Mode is the connectivity shown in the prompt.
type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// App is the interactive front end over the session and log engines.
type App struct {
	config  *config.Config
	session services.SessionService
	logs    services.LogService
	logger  logging.Logger
	// docs downloads policy documents; nil means http.DefaultClient.
	docs *http.Client

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp wires the front end to already constructed engines. Input is read
// from stdin and output goes to stdout.
func NewApp(c *config.Config, session services.SessionService, logs services.LogService, docs *http.Client, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		config:  c,
		session: session,
		logs:    logs,
		logger:  logger,
		docs:    docs,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Mode returns the current connectivity mode.
func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

// track updates the connectivity mode from the outcome of a remote call.
func (a *App) track(err error) {
	switch {
	case err == nil:
		a.setMode(ModeOnline)
	case errors.Is(err, client.ErrNetwork):
		a.setMode(ModeOffline)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// fail prints err for the user and returns it unchanged.
func (a *App) fail(err error) error {
	a.track(err)
	a.printf("error: %s\n", services.UserMessage(err))
	return err
}

func (a *App) getStatus() string {
	s := ""
	if u, ok := a.session.CurrentUser(); ok && a.session.IsAuthenticated() {
		s = u.Username + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run starts background refresh and blocks in the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.printf("Welcome to the policy log CLI (type 'help' for commands)\n")

	if a.isLoggedIn() {
		_ = a.Refresh(ctx)
	} else {
		a.setMode(ModeDisabled)
	}

	go a.StartAutoRefresh(ctx, a.config.RefreshInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// StartAutoRefresh refreshes logs and tags every interval while a session
// exists, switching between online and offline mode on the result.
func (a *App) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isLoggedIn() {
				continue
			}
			rctx, cancel := context.WithTimeout(ctx, a.requestTimeout())
			err := a.logs.RefreshAll(rctx)
			cancel()

			a.track(err)
			if err != nil {
				a.logger.Debug(ctx, "background refresh failed", "err", err)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) requestTimeout() time.Duration {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return a.config.RequestTimeout
}
