package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
)

const shutdownTimeout = 15 * time.Second

// Run starts the modules, the message router and the HTTP server, and blocks
// until ctx is cancelled or one of them fails. Modules are joined before Run
// returns.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, m := range app.modules() {
		wg.Add(1)
		go m.Run(ctx, &wg)
	}

	errc := make(chan error, 2)
	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errc <- fmt.Errorf("message router: %w", err)
		}
	}()

	srv := &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.HTTPRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", attr.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown requested")
	case runErr = <-errc:
		logger.ErrorContext(ctx, "Component failed, shutting down", attr.Error(runErr))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "HTTP server shutdown failed", attr.Error(err))
	}

	cancel()
	wg.Wait()
	return runErr
}
