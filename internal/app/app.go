// Package app wires configuration, logging, the database and the HTTP
// server together and runs them until the context is cancelled.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logging"
	"yatube/internal/models"
	"yatube/internal/server"
	"yatube/web"
)

type App struct {
	config *config.Config
	logger *logging.Logger
	db     *sql.DB
	store  *models.Store
}

// New opens the database, applies migrations and returns a ready App.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	database, err := db.Open(ctx, cfg.Database.Path, logger.Named("migrate"))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return &App{
		config: cfg,
		logger: logger,
		db:     database,
		store:  models.NewStore(database),
	}, nil
}

func (a *App) Store() *models.Store {
	return a.store
}

func (a *App) Close() error {
	return a.db.Close()
}

// Handler builds the HTTP handler for the configured server.
func (a *App) Handler() (http.Handler, error) {
	return server.New(a.store, server.Options{
		Auth:          a.config.Auth,
		Logger:        a.logger,
		Templates:     web.Templates(),
		ExposeMetrics: a.config.Metrics.Enabled,
	})
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// for at most the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:         a.config.Server.Addr,
		Handler:      handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
