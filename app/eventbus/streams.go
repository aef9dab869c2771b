package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var streamConfigs = []jetstream.StreamConfig{
	{
		Name:     "assignment",
		Subjects: []string{"assignment.>"},
	},
}

// EnsureStreams creates the JetStream streams the event topics publish into.
func EnsureStreams(ctx context.Context, conn *nc.Conn, logger *slog.Logger) error {
	js, err := jetstream.New(conn)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize JetStream", attr.Error(err))
		return fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	for _, streamConfig := range streamConfigs {
		_, err := js.Stream(ctx, streamConfig.Name)
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			if _, err := js.CreateStream(ctx, streamConfig); err != nil {
				logger.ErrorContext(ctx, "Failed to create JetStream stream", attr.String("stream", streamConfig.Name), attr.Error(err))
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			logger.InfoContext(ctx, "Created JetStream stream", attr.String("stream", streamConfig.Name))
		} else if err != nil {
			return fmt.Errorf("failed to check stream %s: %w", streamConfig.Name, err)
		}
	}
	return nil
}
