// Package grading decides whether a submitted answer is correct for any of
// the supported question types.
//
// The package boundary is total: no input makes Validator return an error or
// panic. Everything it learns along the way is reported to an injected
// ports.DiagnosticObserver.
package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

// validate is the shared validator instance for configuration structs.
var validate = validator.New()

// Config holds the tunables of a Validator.
type Config struct {
	// NumericTolerance is the absolute difference under which two parsed
	// numerical answers are considered equal.
	NumericTolerance float64 `yaml:"numeric_tolerance" json:"numeric_tolerance" validate:"gt=0,lte=1"`

	// MultiBlankSeparator joins the values of an object-encoded short answer.
	MultiBlankSeparator string `yaml:"multi_blank_separator" json:"multi_blank_separator" validate:"required"`

	// StrictUnknownTypes grades unknown question type tags as incorrect
	// instead of falling back to byte equality.
	StrictUnknownTypes bool `yaml:"strict_unknown_types" json:"strict_unknown_types"`

	// MultipleResponseCaseSensitive lets a multiple-response question's
	// case_sensitive option take effect. When false those questions always
	// compare case-insensitively.
	MultipleResponseCaseSensitive bool `yaml:"multiple_response_case_sensitive" json:"multiple_response_case_sensitive"`

	// MaxAnswerBytes bounds the submitted answer. Longer answers are graded
	// as malformed without being decoded.
	MaxAnswerBytes int `yaml:"max_answer_bytes" json:"max_answer_bytes" validate:"min=1,max=67108864"`

	// DiagnosticInputLimit bounds, in runes, how much of an offending input
	// is copied into a diagnostic.
	DiagnosticInputLimit int `yaml:"diagnostic_input_limit" json:"diagnostic_input_limit" validate:"min=0,max=4096"`
}

// DefaultConfig returns the configuration existing callers were graded with.
func DefaultConfig() Config {
	return Config{
		NumericTolerance:     1e-4,
		MultiBlankSeparator:  ", ",
		MaxAnswerBytes:       1 << 20,
		DiagnosticInputLimit: 120,
	}
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: grading: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}

// Validator grades answers. It holds no per-call state and is safe for
// concurrent use.
type Validator struct {
	config   Config
	observer ports.DiagnosticObserver
	tracer   trace.Tracer
}

// Option configures a Validator.
type Option func(*Validator)

// WithObserver sets the observer that receives one diagnostic per graded
// answer. A nil observer is ignored.
func WithObserver(o ports.DiagnosticObserver) Option {
	return func(v *Validator) {
		if o != nil {
			v.observer = o
		}
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(v *Validator) {
		if t != nil {
			v.tracer = t
		}
	}
}

// NewValidator returns a Validator for config. It fails only when config
// does not validate.
func NewValidator(config Config, opts ...Option) (*Validator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	v := &Validator{
		config:   config,
		observer: ports.NopObserver{},
		tracer:   otel.Tracer("answer-validator"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Config returns the configuration the validator was built with.
func (v *Validator) Config() Config { return v.config }

// ValidateAnswer reports whether userAnswer is a correct answer to a
// question of type qt whose stored answer is correctAnswer.
//
// It never fails: malformed input of any kind grades as false, and the
// details go to the observer.
func (v *Validator) ValidateAnswer(
	userAnswer, correctAnswer string,
	qt domain.QuestionType,
	opts domain.ValidationOptions,
) bool {
	return v.Evaluate(context.Background(), domain.Submission{
		QuestionType:  qt,
		UserAnswer:    userAnswer,
		CorrectAnswer: correctAnswer,
		Options:       opts,
	}).Correct
}

// Evaluate grades one submission and returns the verdict with the
// comparator and stage that decided it.
func (v *Validator) Evaluate(ctx context.Context, sub domain.Submission) domain.Verdict {
	qt := domain.ParseQuestionType(string(sub.QuestionType))
	return v.judge(ctx, evaluation{
		questionID:    sub.QuestionID,
		questionType:  qt,
		user:          sub.UserAnswer,
		correct:       sub.CorrectAnswer,
		correctLength: len(sub.CorrectAnswer),
		hasOptions:    !sub.Options.IsZero(),
		build: func() (domain.Question, error) {
			return BuildQuestion(qt, sub.CorrectAnswer, sub.Options)
		},
	})
}

// Grade grades userAnswer against an already decoded question. Callers that
// hold a structured drag-and-drop assignment use it to skip the string
// round trip.
func (v *Validator) Grade(ctx context.Context, q domain.Question, userAnswer string) domain.Verdict {
	e := evaluation{user: userAnswer}
	e.build = func() (domain.Question, error) {
		if q == nil {
			return nil, errors.New("nil question")
		}
		return q, nil
	}
	if q != nil {
		func() {
			defer func() { _ = recover() }()
			e.questionType = q.Type()
			e.correctLength, e.hasOptions = describeQuestion(q)
		}()
	}
	return v.judge(ctx, e)
}

// evaluation is the input of one grading call.
type evaluation struct {
	questionID    string
	questionType  domain.QuestionType
	user          string
	correct       string
	correctLength int
	hasOptions    bool
	build         func() (domain.Question, error)
}

func (v *Validator) judge(ctx context.Context, e evaluation) domain.Verdict {
	start := time.Now()
	ctx, span := v.tracer.Start(ctx, "AnswerValidator.Evaluate",
		trace.WithAttributes(
			attribute.String("question.type", string(e.questionType)),
			attribute.String("question.id", e.questionID),
			attribute.Int("answer.user_length", len(e.user)),
			attribute.Int("answer.correct_length", e.correctLength),
			attribute.Bool("options.present", e.hasOptions),
		),
	)
	defer span.End()

	out := v.decide(e)

	verdict := domain.Verdict{
		QuestionID:   e.questionID,
		QuestionType: e.questionType,
		Correct:      out.correct,
		Comparator:   out.comparator,
		Stage:        out.stage,
		Reason:       out.reason,
	}

	span.SetAttributes(
		attribute.Bool("verdict.correct", verdict.Correct),
		attribute.String("verdict.comparator", verdict.Comparator),
		attribute.String("verdict.stage", verdict.Stage),
		attribute.String("verdict.reason", string(verdict.Reason)),
	)
	if out.err != nil {
		span.RecordError(out.err)
	}
	if out.level == domain.LevelError {
		span.SetStatus(codes.Error, out.message)
	}

	v.notify(ctx, domain.Diagnostic{
		Level:               out.level,
		QuestionID:          e.questionID,
		QuestionType:        e.questionType,
		Comparator:          out.comparator,
		Stage:               out.stage,
		Reason:              out.reason,
		Correct:             out.correct,
		UserAnswerLength:    len(e.user),
		CorrectAnswerLength: e.correctLength,
		HasOptions:          e.hasOptions,
		Input:               truncate(out.input, v.config.DiagnosticInputLimit),
		Message:             out.message,
		NearestEditDistance: out.distance,
		Err:                 out.err,
		Latency:             time.Since(start),
	})
	return verdict
}

// decide runs the guards and the comparator. A panic anywhere below it is
// converted into an internal_error outcome.
func (v *Validator) decide(e evaluation) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = fail(comparatorName(e.questionType), domain.StageDispatch, domain.ReasonInternalError)
			out.err = fmt.Errorf("comparator panic: %v", r)
			out.message = "comparator panicked"
		}
	}()

	if strings.TrimSpace(e.user) == "" {
		out := fail(ComparatorGuard, domain.StageGuard, domain.ReasonEmptyAnswer)
		out.err = domain.ErrEmptyAnswer
		return out
	}
	if len(e.user) > v.config.MaxAnswerBytes {
		out := fail(ComparatorGuard, domain.StageGuard, domain.ReasonMalformedAnswer)
		out.err = fmt.Errorf("%w: %d bytes exceeds limit of %d",
			domain.ErrAnswerTooLarge, len(e.user), v.config.MaxAnswerBytes)
		out.input = e.user
		out.message = "answer too large"
		return out
	}

	q, err := e.build()
	if err != nil {
		if errors.Is(err, domain.ErrMalformedCorrectAnswer) {
			out := fail(comparatorName(e.questionType), domain.StageDecode, domain.ReasonMalformedCorrectAnswer)
			out.err = err
			out.input = e.correct
			out.message = "stored correct answer did not decode"
			return out
		}
		out := fail(ComparatorGuard, domain.StageDispatch, domain.ReasonInternalError)
		out.err = err
		out.message = err.Error()
		return out
	}
	return v.compare(q, e.user)
}

// notify hands d to the observer. An observer panic is swallowed so that it
// cannot escape the grading boundary.
func (v *Validator) notify(ctx context.Context, d domain.Diagnostic) {
	defer func() { _ = recover() }()
	v.observer.Observe(ctx, d)
}

func comparatorName(qt domain.QuestionType) string {
	if qt.Known() {
		return string(qt)
	}
	return ComparatorFallback
}

// describeQuestion reports the stored answer size and whether any option
// beyond the answer itself is set, for diagnostics of pre-decoded questions.
func describeQuestion(q domain.Question) (correctLength int, hasOptions bool) {
	switch q := q.(type) {
	case domain.MultipleChoiceQuestion:
		return len(q.Correct), false
	case domain.EitherOrQuestion:
		return len(q.Correct), false
	case domain.NumericalEntryQuestion:
		return len(q.Correct), len(q.Acceptable) > 0
	case domain.ShortAnswerQuestion:
		return len(q.Correct), q.CaseSensitive || len(q.Acceptable) > 0 || len(q.Blanks) > 0
	case domain.SelectFromListQuestion:
		return len(q.Correct), q.CaseSensitive || len(q.Blanks) > 0
	case domain.DragAndDropQuestion:
		return len(q.Correct), q.CaseSensitive || len(q.Zones) > 0
	case domain.MultipleResponseQuestion:
		return len(q.Correct), q.CaseSensitive
	case domain.UnrecognizedQuestion:
		return len(q.Correct), false
	default:
		return 0, false
	}
}
