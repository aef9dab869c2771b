// Package operation runs service operations with tracing, metrics, logging, panic
// recovery, store retries and a database transaction.
package operation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/Black-And-White-Club/scout-bot/internal/retry"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Runner holds what every operation of one service shares.
type Runner struct {
	Service string
	Logger  *slog.Logger
	Metrics metrics.ServiceMetrics
	Tracer  trace.Tracer
	DB      *bun.DB
	Retry   []retry.Option
}

// NewRunner fills in a default logger and no-op metrics.
func NewRunner(service string, logger *slog.Logger, m metrics.ServiceMetrics, tracer trace.Tracer, db *bun.DB) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Runner{
		Service: service,
		Logger:  logger,
		Metrics: m,
		Tracer:  tracer,
		DB:      db,
	}
}

// TxFunc is the core logic of an operation. db is a transaction, or nil when the
// runner has no database (tests with in-memory repositories).
type TxFunc[S any, F any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error)

// Run executes fn inside a transaction with telemetry. Transient store failures
// retry the whole transaction.
func Run[S any, F any](ctx context.Context, r *Runner, operationName, identifier string, fn TxFunc[S, F]) (results.OperationResult[S, F], error) {
	return withTelemetry(ctx, r, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, F], error) {
		return retry.Value(ctx, func(ctx context.Context) (results.OperationResult[S, F], error) {
			return runInTx(ctx, r, fn)
		}, r.retryOptions()...)
	})
}

// Read executes fn without a transaction. Used for read-only operations.
func Read[S any, F any](ctx context.Context, r *Runner, operationName, identifier string, fn TxFunc[S, F]) (results.OperationResult[S, F], error) {
	return withTelemetry(ctx, r, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, F], error) {
		return retry.Value(ctx, func(ctx context.Context) (results.OperationResult[S, F], error) {
			if r.DB == nil {
				return fn(ctx, nil)
			}
			return fn(ctx, r.DB)
		}, r.retryOptions()...)
	})
}

func (r *Runner) retryOptions() []retry.Option {
	return append([]retry.Option{retry.WithLogger(r.Logger)}, r.Retry...)
}

func withTelemetry[S any, F any](
	ctx context.Context,
	r *Runner,
	operationName string,
	identifier string,
	op func(ctx context.Context) (results.OperationResult[S, F], error),
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if r.Tracer != nil {
		ctx, span = r.Tracer.Start(ctx, r.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	r.Metrics.RecordOperationAttempt(ctx, operationName, r.Service)

	startTime := time.Now()
	defer func() {
		r.Metrics.RecordOperationDuration(ctx, operationName, r.Service, time.Since(startTime))
	}()

	r.Logger.InfoContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, rec)
			r.Logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		r.Logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		r.Logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	r.Metrics.RecordOperationSuccess(ctx, operationName, r.Service)
	return result, nil
}

func runInTx[S any, F any](ctx context.Context, r *Runner, fn TxFunc[S, F]) (results.OperationResult[S, F], error) {
	if r.DB == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := r.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
