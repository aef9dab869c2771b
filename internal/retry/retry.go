// Package retry retries persistence calls that fail on transient connectivity errors.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = 2 * time.Second
)

type settings struct {
	attempts  int
	delay     time.Duration
	transient func(error) bool
	logger    *slog.Logger
}

// Option tunes a retry call.
type Option func(*settings)

// WithAttempts sets the total number of attempts, including the first one.
func WithAttempts(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithDelay sets the fixed wait between attempts.
func WithDelay(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithClassifier replaces IsTransient.
func WithClassifier(fn func(error) bool) Option {
	return func(s *settings) {
		if fn != nil {
			s.transient = fn
		}
	}
}

// WithLogger logs every retried failure at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func newSettings(opts []Option) settings {
	s := settings{
		attempts:  DefaultAttempts,
		delay:     DefaultDelay,
		transient: IsTransient,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) policy(ctx context.Context) backoff.BackOff {
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(s.delay), uint64(s.attempts-1))
	return backoff.WithContext(b, ctx)
}

func (s settings) notify(ctx context.Context) backoff.Notify {
	return func(err error, wait time.Duration) {
		if s.logger == nil {
			return
		}
		s.logger.WarnContext(ctx, "Transient store failure, retrying",
			attr.ExtractCorrelationID(ctx),
			attr.Duration("wait", wait),
			attr.Error(err),
		)
	}
}

// Do runs op, retrying transient failures. Non-transient errors return immediately.
// After the last attempt the last error is returned as is.
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	s := newSettings(opts)
	return backoff.RetryNotify(func() error {
		err := op(ctx)
		if err != nil && !s.transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, s.policy(ctx), s.notify(ctx))
}

// Value is Do for operations that return a value.
func Value[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	s := newSettings(opts)
	return backoff.RetryNotifyWithData(func() (T, error) {
		v, err := op(ctx)
		if err != nil && !s.transient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, s.policy(ctx), s.notify(ctx))
}

// IsTransient reports whether err looks like a dropped or refused connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return transientSQLState(pgErr.Field('C'))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return transientSQLState(pgxErr.Code)
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// Class 08 is connection exception; 57P01..57P03 are admin shutdown and
// cannot-connect-now.
func transientSQLState(code string) bool {
	return strings.HasPrefix(code, "08") ||
		code == "57P01" || code == "57P02" || code == "57P03"
}
