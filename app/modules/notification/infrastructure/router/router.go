package notificationrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Black-And-White-Club/scout-bot/app/events"
	"github.com/Black-And-White-Club/scout-bot/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// NotificationRouter consumes the events the notification module reacts to.
type NotificationRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	tracer     trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewNotificationRouter wraps router. Prometheus router metrics are added when a
// registry is given outside the test environment.
func NewNotificationRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *NotificationRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &b
	}

	return &NotificationRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure installs middleware and registers every handler.
func (r *NotificationRouter) Configure(_ context.Context, handlers Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
	)

	registerHandler(r, events.AssignmentCreatedV1, handlers.HandleAssignmentCreated)
	return nil
}

// registerHandler decodes the payload of topic into T and hands it to handler
// with the message's correlation ID on the context.
func registerHandler[T any](r *NotificationRouter, topic string, handler func(context.Context, *T) error) {
	handlerName := "notification." + topic

	r.Router.AddNoPublisherHandler(
		handlerName,
		topic,
		r.subscriber,
		func(msg *message.Message) error {
			ctx := msg.Context()
			if id := middleware.MessageCorrelationID(msg); id != "" {
				ctx = attr.WithCorrelationID(ctx, id)
			}

			ctx, span := r.tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.id", msg.UUID),
				attribute.String("message.topic", topic),
			))
			defer span.End()

			payload, err := events.Decode[T](msg)
			if err != nil {
				// A payload that cannot be decoded will never succeed; ack it.
				span.SetStatus(codes.Error, err.Error())
				r.logger.ErrorContext(ctx, "Dropping undecodable message",
					attr.ExtractCorrelationID(ctx),
					attr.String("handler", handlerName),
					attr.String("message_id", msg.UUID),
					attr.Error(err),
				)
				return nil
			}

			if err := handler(ctx, payload); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			return nil
		},
	)
}

func (r *NotificationRouter) Close() error {
	return r.Router.Close()
}
