package app

import (
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
)

// Close releases the modules, the message router, the event bus and the database.
func (app *App) Close() error {
	logger := app.Observability.Logger
	var errs []error

	for _, m := range app.modules() {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close message router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
		return err
	}
	logger.Info("Application shut down gracefully")
	return nil
}
