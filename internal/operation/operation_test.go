package operation

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/scout-bot/internal/results"
	"github.com/Black-And-White-Club/scout-bot/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

type countingMetrics struct {
	attempts, successes, failures, durations int
}

func (m *countingMetrics) RecordOperationAttempt(context.Context, string, string) { m.attempts++ }
func (m *countingMetrics) RecordOperationSuccess(context.Context, string, string) { m.successes++ }
func (m *countingMetrics) RecordOperationFailure(context.Context, string, string) { m.failures++ }
func (m *countingMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {
	m.durations++
}

func newTestRunner(m *countingMetrics) *Runner {
	r := NewRunner("TestService", slog.New(slog.NewTextHandler(io.Discard, nil)), m, noop.NewTracerProvider().Tracer("test"), nil)
	r.Retry = []retry.Option{retry.WithDelay(time.Millisecond)}
	return r
}

func TestRun(t *testing.T) {
	errDB := errors.New("database connection failed")

	tests := []struct {
		name        string
		fn          TxFunc[int, string]
		wantSuccess *int
		wantFailure *string
		wantErr     bool
		wantCalls   int
		verify      func(t *testing.T, m *countingMetrics)
	}{
		{
			name: "success",
			fn: func(ctx context.Context, db bun.IDB) (results.OperationResult[int, string], error) {
				return results.SuccessResult[int, string](3), nil
			},
			wantSuccess: ptr(3),
			wantCalls:   1,
			verify: func(t *testing.T, m *countingMetrics) {
				assert.Equal(t, 1, m.successes)
				assert.Equal(t, 0, m.failures)
			},
		},
		{
			name: "domain failure is not an error",
			fn: func(ctx context.Context, db bun.IDB) (results.OperationResult[int, string], error) {
				return results.FailureResult[int, string]("alliance_full"), nil
			},
			wantFailure: ptr("alliance_full"),
			wantCalls:   1,
		},
		{
			name: "infrastructure error is wrapped",
			fn: func(ctx context.Context, db bun.IDB) (results.OperationResult[int, string], error) {
				return results.OperationResult[int, string]{}, errDB
			},
			wantErr:   true,
			wantCalls: 1,
			verify: func(t *testing.T, m *countingMetrics) {
				assert.Equal(t, 1, m.failures)
			},
		},
		{
			name: "panic is recovered",
			fn: func(ctx context.Context, db bun.IDB) (results.OperationResult[int, string], error) {
				panic("bad document")
			},
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &countingMetrics{}
			calls := 0
			result, err := Run(context.Background(), newTestRunner(m), "Op", "id-1", func(ctx context.Context, db bun.IDB) (results.OperationResult[int, string], error) {
				calls++
				assert.Nil(t, db)
				return tt.fn(ctx, db)
			})

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, 1, m.attempts)
			assert.Equal(t, 1, m.durations)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Op")
			} else {
				require.NoError(t, err)
			}
			if tt.wantSuccess != nil {
				assert.Equal(t, *tt.wantSuccess, *result.Success)
			}
			if tt.wantFailure != nil {
				assert.Equal(t, *tt.wantFailure, *result.Failure)
			}
			if tt.verify != nil {
				tt.verify(t, m)
			}
		})
	}
}

func TestRunRetriesTransientErrors(t *testing.T) {
	m := &countingMetrics{}
	calls := 0
	result, err := Run(context.Background(), newTestRunner(m), "Op", "id", func(ctx context.Context, db bun.IDB) (results.OperationResult[int, string], error) {
		calls++
		if calls < 3 {
			return results.OperationResult[int, string]{}, driver.ErrBadConn
		}
		return results.SuccessResult[int, string](1), nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, *result.Success)
}

func TestRead(t *testing.T) {
	result, err := Read(context.Background(), newTestRunner(&countingMetrics{}), "List", "", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]int, string], error) {
		return results.SuccessResult[[]int, string]([]int{1, 2}), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, *result.Success)
}

func ptr[T any](v T) *T { return &v }
