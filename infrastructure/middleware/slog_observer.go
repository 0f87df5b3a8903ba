package middleware

import (
	"context"
	"log/slog"

	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

var _ ports.DiagnosticObserver = (*SlogObserver)(nil)

// SlogObserver writes each grading diagnostic as one structured log entry.
// Normal verdicts are logged at debug, malformed input and unknown types at
// warn, and data defects at error.
type SlogObserver struct {
	logger ports.Logger
}

// NewSlogObserver returns an observer logging through logger.
func NewSlogObserver(logger ports.Logger) *SlogObserver {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &SlogObserver{logger: logger}
}

// Observe implements ports.DiagnosticObserver.
func (o *SlogObserver) Observe(ctx context.Context, d domain.Diagnostic) {
	args := []any{
		"question_type", string(d.QuestionType),
		"comparator", d.Comparator,
		"stage", d.Stage,
		"correct", d.Correct,
		"reason", string(d.Reason),
		"user_answer_length", d.UserAnswerLength,
		"correct_answer_length", d.CorrectAnswerLength,
		"has_options", d.HasOptions,
		"latency", d.Latency,
	}
	if d.QuestionID != "" {
		args = append(args, "question_id", d.QuestionID)
	}
	if d.Input != "" {
		args = append(args, "input", d.Input)
	}
	if d.NearestEditDistance >= 0 {
		args = append(args, "nearest_edit_distance", d.NearestEditDistance)
	}
	if d.Message != "" {
		args = append(args, "detail", d.Message)
	}
	if d.Err != nil {
		args = append(args, "error", d.Err)
	}

	o.logger.Log(ctx, slogLevel(d.Level), "answer graded", args...)
}

func slogLevel(l domain.DiagnosticLevel) slog.Level {
	switch l {
	case domain.LevelWarn:
		return slog.LevelWarn
	case domain.LevelError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
