package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/examprep/answerkey/internal/domain"
)

func TestObserverFunc(t *testing.T) {
	var got domain.Diagnostic
	obs := ObserverFunc(func(_ context.Context, d domain.Diagnostic) { got = d })

	obs.Observe(context.Background(), domain.Diagnostic{QuestionType: domain.EitherOr, Correct: true})

	assert.Equal(t, domain.EitherOr, got.QuestionType)
	assert.True(t, got.Correct)
}

func TestMultiObserver(t *testing.T) {
	var order []string
	first := ObserverFunc(func(context.Context, domain.Diagnostic) { order = append(order, "first") })
	second := ObserverFunc(func(context.Context, domain.Diagnostic) { order = append(order, "second") })

	multi := MultiObserver{first, nil, NopObserver{}, second}
	multi.Observe(context.Background(), domain.Diagnostic{})

	assert.Equal(t, []string{"first", "second"}, order, "nil observers are skipped and order is kept")
}

func TestMultiObserver_RecoversPanics(t *testing.T) {
	var reached []string
	panicking := ObserverFunc(func(context.Context, domain.Diagnostic) { panic("observer failed") })
	recording := ObserverFunc(func(_ context.Context, d domain.Diagnostic) {
		reached = append(reached, d.Comparator)
	})

	multi := MultiObserver{panicking, recording, panicking, recording}
	assert.NotPanics(t, func() {
		multi.Observe(context.Background(), domain.Diagnostic{Comparator: "multiple_choice"})
	})
	assert.Equal(t, []string{"multiple_choice", "multiple_choice"}, reached)
}

// mockMetricsCollector records calls for interface conformance checks.
type mockMetricsCollector struct{ counters map[string]float64 }

func (m *mockMetricsCollector) RecordLatency(string, time.Duration, map[string]string) {}
func (m *mockMetricsCollector) RecordCounter(metric string, value float64, _ map[string]string) {
	m.counters[metric] += value
}
func (m *mockMetricsCollector) RecordGauge(string, float64, map[string]string)     {}
func (m *mockMetricsCollector) RecordHistogram(string, float64, map[string]string) {}

func TestMetricsCollectorInterface(t *testing.T) {
	var collector MetricsCollector = &mockMetricsCollector{counters: map[string]float64{}}

	collector.RecordCounter("answerkey_validations_total", 1, nil)
	collector.RecordCounter("answerkey_validations_total", 2, nil)

	assert.Equal(t, 3.0, collector.(*mockMetricsCollector).counters["answerkey_validations_total"])
}
