// Package observability bundles the logger, tracer and metrics registry handed to modules.
package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/scout-bot/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects how the bundle is built.
type Config struct {
	ServiceName    string
	Environment    string
	MetricsEnabled bool
	Output         io.Writer
}

// Observability is shared by every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  *metrics.Prometheus
}

// New builds the logger, tracer and Prometheus registry. The tracer comes from the
// global otel provider, which is a no-op unless an exporter has been installed.
func New(cfg Config) Observability {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("env", cfg.Environment),
	)

	obs := Observability{
		Logger: logger,
		Tracer: otel.Tracer(cfg.ServiceName),
	}

	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		obs.Registry = reg
		obs.Metrics = metrics.NewPrometheus(reg)
	}

	return obs
}

// NewTest returns a bundle with a discarded logger and a no-op tracer.
func NewTest() Observability {
	return Observability{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer: noop.NewTracerProvider().Tracer("test"),
	}
}

// ServiceMetrics returns the Prometheus recorder, or a no-op when metrics are disabled.
func (o Observability) ServiceMetrics() metrics.ServiceMetrics {
	if o.Metrics == nil {
		return metrics.NewNoop()
	}
	return o.Metrics
}

// SchedulerMetrics returns the Prometheus recorder, or a no-op when metrics are disabled.
func (o Observability) SchedulerMetrics() metrics.SchedulerMetrics {
	if o.Metrics == nil {
		return metrics.NewNoop()
	}
	return o.Metrics
}
