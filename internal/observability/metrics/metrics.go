// Package metrics exposes Prometheus instrumentation for service operations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics records the lifecycle of a single service operation.
type ServiceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// SchedulerMetrics records notification scheduler activity.
type SchedulerMetrics interface {
	RecordPass(ctx context.Context, pass string, duration time.Duration, err error)
	RecordDelivery(ctx context.Context, outcome string)
	RecordDerived(ctx context.Context, count int)
}

// Prometheus implements ServiceMetrics and SchedulerMetrics.
type Prometheus struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec

	passes     *prometheus.CounterVec
	passTime   *prometheus.HistogramVec
	deliveries *prometheus.CounterVec
	derived    prometheus.Counter
}

// NewPrometheus registers the operation and scheduler collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_operation_attempts_total",
			Help: "Service operations started",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_operation_success_total",
			Help: "Service operations that completed without an infrastructure error",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_operation_failure_total",
			Help: "Service operations that ended in an infrastructure error or panic",
		}, []string{"service", "operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scout_operation_duration_seconds",
			Help:    "Service operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_scheduler_passes_total",
			Help: "Notification scheduler passes by pass and result",
		}, []string{"pass", "result"}),
		passTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scout_scheduler_pass_duration_seconds",
			Help:    "Notification scheduler pass latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"pass"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scout_push_deliveries_total",
			Help: "Push delivery attempts by outcome",
		}, []string{"outcome"}),
		derived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scout_reminders_derived_total",
			Help: "Assignment reminder rows materialized by the derivation pass",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.attempts, m.successes, m.failures, m.duration,
			m.passes, m.passTime, m.deliveries, m.derived)
	}
	return m
}

func (m *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *Prometheus) RecordPass(_ context.Context, pass string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.passes.WithLabelValues(pass, result).Inc()
	m.passTime.WithLabelValues(pass).Observe(duration.Seconds())
}

func (m *Prometheus) RecordDelivery(_ context.Context, outcome string) {
	m.deliveries.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) RecordDerived(_ context.Context, count int) {
	m.derived.Add(float64(count))
}

// Noop discards every measurement.
type Noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() Noop { return Noop{} }

func (Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (Noop) RecordPass(context.Context, string, time.Duration, error)               {}
func (Noop) RecordDelivery(context.Context, string)                                 {}
func (Noop) RecordDerived(context.Context, int)                                     {}

var (
	_ ServiceMetrics   = (*Prometheus)(nil)
	_ SchedulerMetrics = (*Prometheus)(nil)
	_ ServiceMetrics   = Noop{}
	_ SchedulerMetrics = Noop{}
)
