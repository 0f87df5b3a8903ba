// Package middleware provides the cross-cutting concerns around grading:
// structured logging, Prometheus metrics and the observers that feed them.
package middleware

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/examprep/answerkey/internal/ports"
)

// Metric names accepted by PrometheusMetrics.RecordCounter.
const (
	MetricValidations = "validations_total"
	MetricBlankLint   = "blank_lint_total"
	// OperationValidation is the RecordLatency operation for one grading call.
	OperationValidation = "validation"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks verdicts by question type and reason, grading
// latency, and authoring-time blank lint results.
type PrometheusMetrics struct {
	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	blankLint          *prometheus.CounterVec
	operationLatency   *prometheus.HistogramVec
	operationCounter   *prometheus.CounterVec
	systemGauges       *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the collectors under namespace and registers
// them with reg, or with the default registerer when reg is nil. Collectors
// that are already registered are reused, so two engines sharing a registry
// share their series.
func NewPrometheusMetrics(namespace string, reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	// Built unregistered; register below handles duplicates.
	factory := promauto.With(nil)

	pm := &PrometheusMetrics{
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricValidations,
				Help:      "Graded answers by question type, outcome and failure reason.",
			},
			[]string{"question_type", "outcome", "reason"},
		),
		validationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Time spent grading one answer.",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"question_type"},
		),
		blankLint: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricBlankLint,
				Help:      "Blank configuration checks at import time by notation and result.",
			},
			[]string{"format", "outcome"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of engine operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Engine operations by status.",
			},
			[]string{"operation", "status"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "engine_state",
				Help:      "Current engine state values.",
			},
			[]string{"metric"},
		),
	}

	var err error
	pm.validations, err = register(reg, pm.validations, MetricValidations)
	if err != nil {
		return nil, err
	}
	pm.validationDuration, err = register(reg, pm.validationDuration, "validation_duration_seconds")
	if err != nil {
		return nil, err
	}
	pm.blankLint, err = register(reg, pm.blankLint, MetricBlankLint)
	if err != nil {
		return nil, err
	}
	pm.operationLatency, err = register(reg, pm.operationLatency, "operation_duration_seconds")
	if err != nil {
		return nil, err
	}
	pm.operationCounter, err = register(reg, pm.operationCounter, "operations_total")
	if err != nil {
		return nil, err
	}
	pm.systemGauges, err = register(reg, pm.systemGauges, "engine_state")
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, ports.NewMetricsError(name, "register", err)
	}
	return c, nil
}

// RecordLatency implements the MetricsCollector interface. Grading calls go
// to the per-question-type histogram, everything else to the operation
// histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	if operation == OperationValidation {
		pm.validationDuration.WithLabelValues(label(labels, "question_type")).Observe(duration.Seconds())
		return
	}
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case MetricValidations:
		pm.validations.WithLabelValues(
			label(labels, "question_type"),
			label(labels, "outcome"),
			label(labels, "reason"),
		).Add(value)
	case MetricBlankLint:
		pm.blankLint.WithLabelValues(
			label(labels, "format"),
			label(labels, "outcome"),
		).Add(value)
	default:
		status, ok := labels["status"]
		if !ok || status == "" {
			status = "success"
		}
		pm.operationCounter.WithLabelValues(metric, status).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface. Values are
// recorded in the operation histogram under the metric name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, _ map[string]string,
) {
	pm.operationLatency.WithLabelValues(metric).Observe(value)
}

func label(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
