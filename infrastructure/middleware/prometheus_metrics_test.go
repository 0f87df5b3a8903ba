package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMetrics("answerkey", reg)
	require.NoError(t, err)
	return pm, reg
}

// TestNewPrometheusMetrics verifies that all collectors are created and
// registered under the namespace.
func TestNewPrometheusMetrics(t *testing.T) {
	pm, reg := newTestMetrics(t)

	assert.NotNil(t, pm.validations)
	assert.NotNil(t, pm.validationDuration)
	assert.NotNil(t, pm.blankLint)
	assert.NotNil(t, pm.operationLatency)
	assert.NotNil(t, pm.operationCounter)
	assert.NotNil(t, pm.systemGauges)

	var _ ports.MetricsCollector = pm

	pm.RecordCounter(MetricValidations, 1, map[string]string{
		"question_type": "multiple_choice", "outcome": "correct", "reason": "none",
	})
	count, err := testutil.GatherAndCount(reg, "answerkey_validations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewPrometheusMetrics_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusMetrics("answerkey", reg)
	require.NoError(t, err)
	second, err := NewPrometheusMetrics("answerkey", reg)
	require.NoError(t, err)

	second.RecordCounter(MetricBlankLint, 2, map[string]string{"format": "underscore", "outcome": "valid"})

	assert.Equal(t, 2.0, testutil.ToFloat64(first.blankLint.WithLabelValues("underscore", "valid")))
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		labels map[string]string
		read   func(pm *PrometheusMetrics) prometheus.Collector
	}{
		{
			name:   "validation verdict",
			metric: MetricValidations,
			labels: map[string]string{"question_type": "short_answer", "outcome": "incorrect", "reason": "mismatch"},
			read: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.validations.WithLabelValues("short_answer", "incorrect", "mismatch")
			},
		},
		{
			name:   "missing labels become unknown",
			metric: MetricValidations,
			labels: map[string]string{"outcome": ""},
			read: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.validations.WithLabelValues("unknown", "unknown", "unknown")
			},
		},
		{
			name:   "blank lint",
			metric: MetricBlankLint,
			labels: map[string]string{"format": "blank_tag", "outcome": "mismatch"},
			read: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.blankLint.WithLabelValues("blank_tag", "mismatch")
			},
		},
		{
			name:   "other operations default to success",
			metric: "grade_run",
			labels: nil,
			read: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.operationCounter.WithLabelValues("grade_run", "success")
			},
		},
		{
			name:   "other operations with status",
			metric: "grade_run",
			labels: map[string]string{"status": "canceled"},
			read: func(pm *PrometheusMetrics) prometheus.Collector {
				return pm.operationCounter.WithLabelValues("grade_run", "canceled")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, _ := newTestMetrics(t)
			pm.RecordCounter(tt.metric, 3, tt.labels)
			assert.Equal(t, 3.0, testutil.ToFloat64(tt.read(pm)))
		})
	}
}

func TestPrometheusMetrics_RecordLatencyAndGauge(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordLatency(OperationValidation, 50*time.Microsecond, map[string]string{"question_type": "drag_and_drop"})
	pm.RecordLatency("import_question", 2*time.Millisecond, nil)
	pm.RecordHistogram("run_size", 40, nil)
	pm.RecordGauge("grade_run_in_flight", 7, nil)

	n, err := testutil.GatherAndCount(reg, "answerkey_validation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(reg, "answerkey_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, 7.0, testutil.ToFloat64(pm.systemGauges.WithLabelValues("grade_run_in_flight")))
}

func TestMetricsObserver(t *testing.T) {
	pm, _ := newTestMetrics(t)
	obs := NewMetricsObserver(pm)
	ctx := context.Background()

	obs.Observe(ctx, domain.Diagnostic{
		QuestionType: domain.MultipleChoice, Correct: true, Reason: domain.ReasonNone, Latency: time.Microsecond,
	})
	obs.Observe(ctx, domain.Diagnostic{
		QuestionType: "hotspot", Reason: domain.ReasonMismatch,
	})
	obs.Observe(ctx, domain.Diagnostic{
		QuestionType: "essay", Reason: domain.ReasonMismatch,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(pm.validations.WithLabelValues("multiple_choice", "correct", "none")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.validations.WithLabelValues("unrecognized", "incorrect", "mismatch")))

	assert.NotPanics(t, func() {
		NewMetricsObserver(nil).Observe(ctx, domain.Diagnostic{})
	})
}
