package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/examprep/answerkey/infrastructure/grading"
	"github.com/examprep/answerkey/infrastructure/middleware"
	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

// Operation names recorded by the engine in the operation metrics.
const (
	OperationGradeRun       = "grade_run"
	OperationImportQuestion = "import_question"
	metricRunSize           = "grade_run_size"
	metricRunInFlight       = "grade_run_in_flight"
)

// ErrRunTooLarge indicates that a test run holds more submissions than the
// batch configuration allows.
var ErrRunTooLarge = errors.New("test run too large")

// Engine is the entry point for grading and question authoring. It owns a
// validator whose diagnostics are fanned out to structured logs, Prometheus
// metrics and any caller-supplied observer.
// Engine is safe for concurrent use.
type Engine struct {
	// config is the validated configuration the engine was built with.
	config EngineConfig
	// validator grades every submission.
	validator *grading.Validator
	// logger receives import findings and run-level events.
	logger ports.Logger
	// metrics is nil when metrics are disabled.
	metrics ports.MetricsCollector
}

// EngineOption configures optional collaborators of an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger     ports.Logger
	registerer prometheus.Registerer
	observer   ports.DiagnosticObserver
	tracer     trace.Tracer
}

// WithLogger replaces the logger built from the logging configuration.
func WithLogger(l ports.Logger) EngineOption {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer registers the engine's collectors with reg instead of the
// default Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) EngineOption {
	return func(o *engineOptions) {
		if reg != nil {
			o.registerer = reg
		}
	}
}

// WithObserver adds an observer that receives every grading diagnostic in
// addition to the log and metrics observers.
func WithObserver(obs ports.DiagnosticObserver) EngineOption {
	return func(o *engineOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithEngineTracer sets the tracer used for evaluation spans.
func WithEngineTracer(t trace.Tracer) EngineOption {
	return func(o *engineOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// NewEngine creates an Engine from a configuration, wiring the validator to
// a slog observer and, when metrics are enabled, a Prometheus observer.
// NewEngine writes logs to stderr unless WithLogger is given.
// NewEngine returns an error if the configuration is invalid, the logger
// cannot be built, or the metric collectors cannot be registered.
func NewEngine(cfg EngineConfig, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		logger, err := middleware.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		o.logger = logger
	}

	observers := ports.MultiObserver{middleware.NewSlogObserver(o.logger)}

	var metrics ports.MetricsCollector
	if cfg.Metrics.Enabled {
		pm, err := middleware.NewPrometheusMetrics(cfg.Metrics.Namespace, o.registerer)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		metrics = pm
		observers = append(observers, middleware.NewMetricsObserver(pm))
	}
	if o.observer != nil {
		observers = append(observers, o.observer)
	}

	validatorOpts := []grading.Option{grading.WithObserver(observers)}
	if o.tracer != nil {
		validatorOpts = append(validatorOpts, grading.WithTracer(o.tracer))
	}
	v, err := grading.NewValidator(cfg.Grading, validatorOpts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:    cfg,
		validator: v,
		logger:    o.logger,
		metrics:   metrics,
	}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() EngineConfig { return e.config }

// Validator returns the underlying answer validator.
func (e *Engine) Validator() *grading.Validator { return e.validator }

// ValidateAnswer reports whether userAnswer is correct for a question of
// type qt with the stored correctAnswer and options. It never fails.
func (e *Engine) ValidateAnswer(userAnswer, correctAnswer string, qt domain.QuestionType, opts domain.ValidationOptions) bool {
	return e.validator.ValidateAnswer(userAnswer, correctAnswer, qt, opts)
}

// Evaluate grades one submission and returns the full verdict.
func (e *Engine) Evaluate(ctx context.Context, sub domain.Submission) domain.Verdict {
	return e.validator.Evaluate(ctx, sub)
}

// TypeSummary counts graded submissions of one question type.
type TypeSummary struct {
	Total   int `json:"total" yaml:"total"`
	Correct int `json:"correct" yaml:"correct"`
}

// RunSummary aggregates the verdicts of one test run.
type RunSummary struct {
	Total     int                                 `json:"total" yaml:"total"`
	Correct   int                                 `json:"correct" yaml:"correct"`
	Incorrect int                                 `json:"incorrect" yaml:"incorrect"`
	ByType    map[domain.QuestionType]TypeSummary `json:"by_type" yaml:"by_type"`
	ByReason  map[domain.FailureReason]int        `json:"by_reason" yaml:"by_reason"`
	Duration  time.Duration                       `json:"duration" yaml:"duration"`
}

// Score returns the fraction of correct answers, or 0 for an empty run.
func (s RunSummary) Score() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Summarize aggregates verdicts into a RunSummary. Negative verdicts are
// counted under their failure reason.
func Summarize(verdicts []domain.Verdict) RunSummary {
	s := RunSummary{
		ByType:   make(map[domain.QuestionType]TypeSummary),
		ByReason: make(map[domain.FailureReason]int),
	}
	for _, v := range verdicts {
		s.Total++
		ts := s.ByType[v.QuestionType]
		ts.Total++
		if v.Correct {
			s.Correct++
			ts.Correct++
		} else {
			s.Incorrect++
			s.ByReason[v.Reason]++
		}
		s.ByType[v.QuestionType] = ts
	}
	return s
}

// GradeRun grades every submission of a test run with bounded concurrency
// and returns the verdicts in input order together with a summary.
// GradeRun stops scheduling work once ctx is canceled.
// GradeRun returns an error wrapping ErrRunTooLarge if the run exceeds the
// configured maximum, or the context error if ctx is canceled before every
// submission is graded.
func (e *Engine) GradeRun(ctx context.Context, subs []domain.Submission) ([]domain.Verdict, RunSummary, error) {
	if n, limit := len(subs), e.config.Batch.MaxSubmissions; n > limit {
		e.recordRun(0, "rejected", len(subs))
		return nil, RunSummary{}, fmt.Errorf("%w: %d submissions exceeds limit of %d", ErrRunTooLarge, n, limit)
	}

	start := time.Now()
	verdicts := make([]domain.Verdict, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Batch.Concurrency)
	if e.metrics != nil {
		e.metrics.RecordGauge(metricRunInFlight, float64(len(subs)), nil)
		defer e.metrics.RecordGauge(metricRunInFlight, 0, nil)
	}

	for i := range subs {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = e.validator.Evaluate(gctx, subs[i])
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.recordRun(time.Since(start), "canceled", len(subs))
		e.logger.Warn("grade run canceled", "submissions", len(subs), "error", err)
		return nil, RunSummary{}, fmt.Errorf("grade run canceled: %w", err)
	}

	summary := Summarize(verdicts)
	summary.Duration = time.Since(start)
	e.recordRun(summary.Duration, "success", len(subs))
	e.logger.Info("grade run completed",
		"submissions", summary.Total,
		"correct", summary.Correct,
		"score", summary.Score(),
		"duration", summary.Duration,
	)
	return verdicts, summary, nil
}

func (e *Engine) recordRun(d time.Duration, status string, size int) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordCounter(OperationGradeRun, 1, map[string]string{"status": status})
	e.metrics.RecordHistogram(metricRunSize, float64(size), nil)
	if d > 0 {
		e.metrics.RecordLatency(OperationGradeRun, d, nil)
	}
}
