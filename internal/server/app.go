// Package server runs the development backend: an in-memory implementation
// of the admin REST API seeded with demo data.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/backoffice/internal/logging"
	"github.com/dmitrijs2005/backoffice/internal/server/config"
	"github.com/dmitrijs2005/backoffice/internal/server/httpapi"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *httpapi.Backend
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	b := httpapi.New(
		httpapi.WithSecret(c.SecretKey, c.TokenValidityDuration),
		httpapi.WithRateLimit(c.RateLimit),
		httpapi.WithLogger(logger.With("module", "httpapi")),
	)
	err := b.Seed(httpapi.Credentials{
		AdminEmail: c.AdminEmail, AdminPassword: c.AdminPassword,
		StaffEmail: c.StaffEmail, StaffPassword: c.StaffPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("seed error: %w", err)
	}

	return &App{config: c, logger: logger, backend: b}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	ln, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		return err
	}
	return app.serve(ctx, ln)
}

func (app *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
