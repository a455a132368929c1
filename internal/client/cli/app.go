package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/backoffice/internal/client/api"
	"github.com/dmitrijs2005/backoffice/internal/client/config"
	"github.com/dmitrijs2005/backoffice/internal/client/forms"
	"github.com/dmitrijs2005/backoffice/internal/client/guard"
	"github.com/dmitrijs2005/backoffice/internal/client/list"
	"github.com/dmitrijs2005/backoffice/internal/client/localdb"
	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/client/notify"
	"github.com/dmitrijs2005/backoffice/internal/client/session"
	"github.com/dmitrijs2005/backoffice/internal/client/table"
	"github.com/dmitrijs2005/backoffice/internal/client/ui"
	"github.com/dmitrijs2005/backoffice/internal/logging"
)

// App is the wired back office: one session, one API client and one list
// screen per resource.
type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session *session.Store
	admin   *api.Admin
	metrics *api.Metrics
	bus     *list.Bus
	router  *guard.Router
	poller  *notify.Poller
	console *ui.Console
	kit     forms.Kit
	reader  *bufio.Reader
	out     io.Writer

	screens     map[string]screen
	screen      screen
	notes       *table.View[models.Notification]
	notesSearch string

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollCtx    context.Context
}

// NewApp opens the local database, restores any saved session and builds
// the screens. in and out are the terminal; diagnostics go to logger.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := localdb.Open(ctx, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}

	a := &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		bus:     list.NewBus(),
		console: ui.NewConsole(out),
		reader:  reader,
		out:     out,
		metrics: api.NewMetrics(prometheus.NewRegistry()),
	}

	client := api.New(cfg.APIURL,
		api.WithTokenSource(a.token),
		api.WithRateLimit(cfg.RateLimit, 5),
		api.WithLogger(logger),
		api.WithMetrics(a.metrics),
		api.WithUnauthorizedHandler(a.expire),
	)
	a.admin = api.NewAdmin(client)
	a.session = session.New(db, client, logger)
	a.router = guard.NewRouter(a.session, guard.Routes())
	a.poller = notify.New(a.admin.Notifications,
		notify.WithInterval(cfg.PollInterval),
		notify.WithAlerter(ui.Bell{Console: a.console}),
		notify.WithLogger(logger),
	)
	a.kit = forms.Kit{
		Toaster:   a.console,
		Confirmer: ui.NewPrompt(reader, out),
		Bus:       a.bus,
		Logger:    logger,
	}
	a.screens = a.buildScreens()
	a.notes, err = table.New(notificationColumns,
		table.WithRowKey(func(n models.Notification) (string, bool) { return fmt.Sprint(n.ID), true }),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.session.Restore(ctx)
	a.session.OnChange(func(session.State) { a.sessionChanged(ctx) })
	return a, nil
}

func (a *App) token() string {
	if a.session == nil {
		return ""
	}
	return a.session.Token()
}

// expire runs when the backend rejects the token.
func (a *App) expire() {
	if !a.session.IsAuthenticated() {
		return
	}
	ctx := context.Background()
	a.logger.Warn(ctx, "token rejected, logging out")
	a.session.Logout(ctx)
	a.console.Toast(ui.Failure, "Session expired. Please log in again.")
}

// sessionChanged rechecks the visible route and starts or stops polling.
func (a *App) sessionChanged(ctx context.Context) {
	if _, err := a.router.Recheck(); err != nil {
		a.logger.Error(ctx, "route recheck failed", "error", err)
	}
	if a.session.IsAuthenticated() {
		a.startPolling()
	} else {
		a.stopPolling()
		a.poller.Reset()
	}
}

// SetConfirmer replaces the delete confirmation prompt.
func (a *App) SetConfirmer(c ui.Confirmer) {
	a.kit.Confirmer = c
}

// startPolling runs the notification poller under the context given to
// Shell. It does nothing outside the shell or when already running.
func (a *App) startPolling() {
	a.pollMu.Lock()
	defer a.pollMu.Unlock()
	if a.pollCtx == nil || a.pollCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(a.pollCtx)
	a.pollCancel = cancel
	go a.poller.Run(ctx)
}

func (a *App) stopPolling() {
	a.pollMu.Lock()
	defer a.pollMu.Unlock()
	if a.pollCancel != nil {
		a.pollCancel()
		a.pollCancel = nil
	}
}

// Close stops background work and closes the database.
func (a *App) Close() error {
	a.stopPolling()
	for _, s := range a.screens {
		s.close()
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// getStatus is the prompt suffix: who is logged in and the unread badge.
func (a *App) getStatus() string {
	u := a.session.User()
	if u == nil {
		return ""
	}
	s := fmt.Sprintf("(%s %s)", u.DisplayName(), u.RoleName())
	if badge := a.poller.Badge(); badge != "" {
		s += " [" + badge + "]"
	}
	return s
}
