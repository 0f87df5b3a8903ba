package middleware

import (
	"context"

	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

var _ ports.DiagnosticObserver = (*MetricsObserver)(nil)

// MetricsObserver turns grading diagnostics into verdict counters and
// latency observations.
type MetricsObserver struct {
	metrics ports.MetricsCollector
}

// NewMetricsObserver returns an observer recording into metrics.
func NewMetricsObserver(metrics ports.MetricsCollector) *MetricsObserver {
	return &MetricsObserver{metrics: metrics}
}

// Observe implements ports.DiagnosticObserver.
func (o *MetricsObserver) Observe(_ context.Context, d domain.Diagnostic) {
	if o.metrics == nil {
		return
	}
	outcome := "incorrect"
	if d.Correct {
		outcome = "correct"
	}
	o.metrics.RecordCounter(MetricValidations, 1, map[string]string{
		"question_type": metricQuestionType(d.QuestionType),
		"outcome":       outcome,
		"reason":        string(d.Reason),
	})
	o.metrics.RecordLatency(OperationValidation, d.Latency, map[string]string{
		"question_type": metricQuestionType(d.QuestionType),
	})
}

// metricQuestionType keeps label cardinality bounded: unknown tags come from
// callers and are folded into one series.
func metricQuestionType(qt domain.QuestionType) string {
	if qt.Known() {
		return string(qt)
	}
	return "unrecognized"
}
