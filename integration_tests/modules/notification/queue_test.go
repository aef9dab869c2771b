package notification_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	notificationservice "github.com/Black-And-White-Club/scout-bot/app/modules/notification/application"
	notificationqueue "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/queue"
	"github.com/Black-And-White-Club/scout-bot/integration_tests/testutils"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
)

type countingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
	done  chan struct{}
}

func (n *countingNotifier) NotifyAssigned(_ context.Context, created events.AssignmentCreatedPayloadV1) (notificationservice.DeliveryReport, error) {
	n.mu.Lock()
	n.calls = append(n.calls, created.AssignmentID)
	n.mu.Unlock()
	select {
	case n.done <- struct{}{}:
	default:
	}
	return notificationservice.DeliveryReport{Sent: len(created.AssignedTo)}, nil
}

func TestQueue_EnqueueDeduplicatesAndRuns(t *testing.T) {
	env := testutils.Require(t, testEnv)
	ctx, cancel := context.WithTimeout(env.Ctx, 30*time.Second)
	defer cancel()

	notifier := &countingNotifier{done: make(chan struct{}, 1)}
	queue, err := notificationqueue.NewService(ctx, env.Observability.Logger, env.DSN, metrics.NewNoop(), notifier)
	require.NoError(t, err)

	created := events.AssignmentCreatedPayloadV1{
		AssignmentID: uuid.New(),
		TeamNumber:   604,
		Title:        "Scout quals 1-20",
		AssignedTo:   []string{"u1"},
	}
	require.NoError(t, queue.EnqueueNotifyAssigned(ctx, created))
	require.NoError(t, queue.EnqueueNotifyAssigned(ctx, created))

	var jobs int
	require.NoError(t, env.DB.NewRaw("SELECT COUNT(*) FROM river_job WHERE kind = ?", notificationqueue.NotifyAssignedJob{}.Kind()).Scan(ctx, &jobs))
	assert.Equal(t, 1, jobs)

	require.NoError(t, queue.HealthCheck(ctx))
	require.NoError(t, queue.Start(ctx))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		assert.NoError(t, queue.Stop(stopCtx))
	}()

	select {
	case <-notifier.done:
	case <-ctx.Done():
		t.Fatal("notify assigned job did not run")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []uuid.UUID{created.AssignmentID}, notifier.calls)
}
