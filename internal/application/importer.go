package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/examprep/answerkey/infrastructure/blanks"
	"github.com/examprep/answerkey/infrastructure/grading"
	"github.com/examprep/answerkey/infrastructure/middleware"
	"github.com/examprep/answerkey/internal/domain"
)

// QuestionDraft is an authored question as it arrives from an import file
// or authoring tool, before normalization.
type QuestionDraft struct {
	// ID identifies the question within its set.
	ID string `yaml:"id" json:"id" validate:"omitempty,max=128"`
	// Type is the question type tag in any accepted spelling.
	Type domain.QuestionType `yaml:"type" json:"type" validate:"required,questiontype"`
	// Text is the raw question text in any blank notation.
	Text string `yaml:"text" json:"text" validate:"required"`
	// CorrectAnswer is the stored correct answer in its wire encoding. It may
	// be empty when the answers live in Options.Blanks.
	CorrectAnswer string `yaml:"correct_answer" json:"correct_answer"`
	// Options is the question's validation option bag.
	Options domain.ValidationOptions `yaml:"options,omitempty" json:"options,omitempty"`
}

// ImportedQuestion is a draft that passed import checks, with its
// normalization stored alongside so grading never recomputes it.
type ImportedQuestion struct {
	ID            string                   `yaml:"id,omitempty" json:"id,omitempty"`
	Type          domain.QuestionType      `yaml:"type" json:"type"`
	Text          string                   `yaml:"text" json:"text"`
	CorrectAnswer string                   `yaml:"correct_answer" json:"correct_answer"`
	Options       domain.ValidationOptions `yaml:"options" json:"options"`

	// Normalization is the blank normalization of Text.
	Normalization domain.NormalizationResult `yaml:"normalization" json:"normalization"`
	// BlankReport is set for question types that use blanks.
	BlankReport *domain.BlankConfigReport `yaml:"blank_report,omitempty" json:"blank_report,omitempty"`
	// Warnings lists data-quality findings that did not block the import.
	Warnings []string `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// ImportQuestion normalizes the blanks of a draft and runs the authoring
// checks that grading never performs: struct validation, option linting,
// blank configuration lint and decoding of the stored correct answer.
// ImportQuestion treats a disagreement between the blanks in the text and
// the authored blank descriptors as a data defect and logs it at error level.
// ImportQuestion returns a *domain.ValidationError whose Cause is
// domain.ErrBlankCountMismatch for such a disagreement,
// domain.ErrUnknownQuestionType for unknown tags,
// domain.ErrMalformedCorrectAnswer for an undecodable correct answer, and
// domain.ErrInvalidConfiguration for every other failed check.
func (e *Engine) ImportQuestion(draft QuestionDraft) (ImportedQuestion, error) {
	start := time.Now()
	imported, err := e.importQuestion(draft)

	status := "success"
	if err != nil {
		status = "failed"
		e.logger.LogError(err, "question import failed",
			"question_id", draft.ID,
			"question_type", string(draft.Type),
		)
	}
	if e.metrics != nil {
		e.metrics.RecordCounter(OperationImportQuestion, 1, map[string]string{"status": status})
		e.metrics.RecordLatency(OperationImportQuestion, time.Since(start), nil)
	}
	return imported, err
}

func (e *Engine) importQuestion(draft QuestionDraft) (ImportedQuestion, error) {
	entity := "question"
	if draft.ID != "" {
		entity = fmt.Sprintf("question %s", draft.ID)
	}

	if err := validate.Struct(draft); err != nil {
		return ImportedQuestion{}, draftValidationError(entity, err)
	}

	qt := domain.ParseQuestionType(string(draft.Type))
	if err := LintOptions(qt, draft.Options); err != nil {
		return ImportedQuestion{}, err
	}
	if strings.TrimSpace(draft.CorrectAnswer) == "" && !answersInBlanks(qt, draft.Options) {
		verr := domain.NewValidationError(entity)
		verr.Cause = domain.ErrInvalidConfiguration
		verr.AddError(fmt.Sprintf("correct answer is required for %s", qt))
		return ImportedQuestion{}, verr
	}

	imported := ImportedQuestion{
		ID:            draft.ID,
		Type:          qt,
		Text:          draft.Text,
		CorrectAnswer: draft.CorrectAnswer,
		Options:       draft.Options,
		Normalization: blanks.NormalizeQuestionBlanks(draft.Text),
	}

	if qt.UsesBlanks() {
		report := blanks.ValidateBlankConfiguration(draft.Text, draft.Options.Blanks)
		imported.BlankReport = &report
		e.recordBlankLint(report)

		if enforcesBlankCount(qt, draft.Options) && report.TextBlankCount != report.ConfiguredBlankCount {
			verr := domain.NewValidationError(entity)
			verr.Cause = domain.ErrBlankCountMismatch
			verr.AddError(report.Message)
			return ImportedQuestion{}, verr
		}
		if !report.Valid {
			imported.Warnings = append(imported.Warnings, report.Message)
		}
	}

	if _, err := grading.BuildQuestion(qt, draft.CorrectAnswer, draft.Options); err != nil {
		verr := domain.NewValidationError(entity)
		verr.Cause = err
		verr.AddError("stored correct answer does not decode")
		return ImportedQuestion{}, verr
	}

	if imported.Normalization.OriginalFormat == domain.FormatMixed {
		imported.Warnings = append(imported.Warnings, "question text mixes blank notations")
	}
	for _, w := range imported.Warnings {
		e.logger.Warn("question imported with warning",
			"question_id", draft.ID,
			"question_type", string(qt),
			"warning", w,
		)
	}
	return imported, nil
}

// answersInBlanks reports whether the per-blank descriptors carry the
// correct answers, leaving the top-level correct answer optional.
func answersInBlanks(qt domain.QuestionType, opts domain.ValidationOptions) bool {
	return qt.UsesBlanks() && len(opts.Blanks) > 0
}

// enforcesBlankCount reports whether a count mismatch blocks the import.
// Dropdown questions always grade per blank; short answers only do when
// they carry blank descriptors.
func enforcesBlankCount(qt domain.QuestionType, opts domain.ValidationOptions) bool {
	switch qt {
	case domain.SelectFromList:
		return true
	case domain.ShortAnswer:
		return len(opts.Blanks) > 0
	default:
		return false
	}
}

func (e *Engine) recordBlankLint(report domain.BlankConfigReport) {
	if e.metrics == nil {
		return
	}
	outcome := "valid"
	switch {
	case report.TextBlankCount != report.ConfiguredBlankCount:
		outcome = "count_mismatch"
	case !report.Valid:
		outcome = "invalid"
	}
	e.metrics.RecordCounter(middleware.MetricBlankLint, 1, map[string]string{
		"format":  string(report.Format),
		"outcome": outcome,
	})
}

// draftValidationError converts struct validation failures into a
// ValidationError. A rejected type tag is classified as an unknown type.
func draftValidationError(entity string, err error) *domain.ValidationError {
	verr := domain.NewValidationError(entity)
	verr.Cause = domain.ErrInvalidConfiguration

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.AddError(err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "questiontype" {
			verr.Cause = domain.ErrUnknownQuestionType
			verr.AddError(fmt.Sprintf("unknown question type %q", fe.Value()))
			continue
		}
		verr.AddError(fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag()))
	}
	return verr
}

// ImportQuestionSet imports every question of a set. Questions that fail
// are skipped; their errors are joined in the returned error.
func (e *Engine) ImportQuestionSet(set *QuestionSet) ([]ImportedQuestion, error) {
	imported := make([]ImportedQuestion, 0, len(set.Questions))
	var errs []error
	for _, draft := range set.Questions {
		q, err := e.ImportQuestion(draft)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		imported = append(imported, q)
	}
	return imported, errors.Join(errs...)
}
