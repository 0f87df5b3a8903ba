package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/examprep/answerkey/internal/domain"
)

// validate is the package validator with the question-specific tags
// registered.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterQuestionValidators(v); err != nil {
		panic(fmt.Sprintf("register question validators: %v", err))
	}
	return v
}

// RegisterQuestionValidators registers the custom tags used by question
// drafts and question sets with the validator instance.
// RegisterQuestionValidators adds the questiontype tag, which accepts any
// spelling that ParseQuestionType maps to a known type, and the semver tag
// used by question set versions.
// RegisterQuestionValidators returns an error if any registration fails.
func RegisterQuestionValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("questiontype", validateQuestionTypeTag); err != nil {
		return fmt.Errorf("failed to register questiontype validator: %w", err)
	}
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows X.Y.Z where X, Y and Z
// are non-negative integers.
func validateSemver(fl validator.FieldLevel) bool {
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(fl.Field().String(), "%d.%d.%d%s", &major, &minor, &patch, &rest)
	return n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateQuestionTypeTag is a validator.Func reporting whether the field
// names a known question type.
func validateQuestionTypeTag(fl validator.FieldLevel) bool {
	return domain.ParseQuestionType(fl.Field().String()).Known()
}

// LintOptions performs the authoring-time checks on a question's option bag
// that the grading path never performs.
// LintOptions rejects options that the question type's comparator would
// silently ignore, duplicate blank and zone ids, invalid descriptor fields,
// and dropdown blanks whose correct answer is not among their choices.
// LintOptions returns a *domain.ValidationError listing every problem, with
// Cause set to domain.ErrUnknownQuestionType for unknown tags and
// domain.ErrInvalidConfiguration otherwise.
func LintOptions(qt domain.QuestionType, opts domain.ValidationOptions) error {
	parsed := domain.ParseQuestionType(string(qt))
	verr := domain.NewValidationError(fmt.Sprintf("options for %s", parsed))

	if !parsed.Known() {
		verr.Cause = domain.ErrUnknownQuestionType
		verr.AddError(fmt.Sprintf("unknown question type %q", string(qt)))
		return verr
	}
	verr.Cause = domain.ErrInvalidConfiguration

	if err := validate.Struct(opts); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				verr.AddError(fmt.Sprintf("%s fails %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			verr.AddError(err.Error())
		}
	}

	if len(opts.Blanks) > 0 && !parsed.UsesBlanks() {
		verr.AddError(fmt.Sprintf("blanks are not used by %s", parsed))
	}
	if len(opts.DropZones) > 0 && parsed != domain.DragAndDrop {
		verr.AddError(fmt.Sprintf("drop zones are not used by %s", parsed))
	}
	if len(opts.AcceptableAnswers) > 0 && !usesAcceptableAnswers(parsed) {
		verr.AddError(fmt.Sprintf("acceptable answers are not used by %s", parsed))
	}
	if opts.CaseSensitive && !usesCaseSensitivity(parsed) {
		verr.AddError(fmt.Sprintf("case_sensitive has no effect on %s", parsed))
	}

	seenBlanks := make(map[int]bool, len(opts.Blanks))
	for _, b := range opts.Blanks {
		if seenBlanks[b.BlankID] {
			verr.AddError(fmt.Sprintf("duplicate blank id %d", b.BlankID))
		}
		seenBlanks[b.BlankID] = true

		if parsed == domain.SelectFromList && len(b.AnswerChoices) > 0 && !containsFold(b.AnswerChoices, b.CorrectAnswer) {
			verr.AddError(fmt.Sprintf("blank %d: correct answer %q is not among its choices", b.BlankID, b.CorrectAnswer))
		}
		if strings.TrimSpace(b.CorrectAnswer) == "" {
			verr.AddError(fmt.Sprintf("blank %d: correct answer is empty", b.BlankID))
		}
	}

	seenZones := make(map[int]bool, len(opts.DropZones))
	for _, z := range opts.DropZones {
		if seenZones[z.ZoneID] {
			verr.AddError(fmt.Sprintf("duplicate zone id %d", z.ZoneID))
		}
		seenZones[z.ZoneID] = true
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func usesAcceptableAnswers(qt domain.QuestionType) bool {
	return qt == domain.NumericalEntry || qt == domain.ShortAnswer
}

// usesCaseSensitivity lists the types whose comparator reads case_sensitive.
// Multiple response is included because the engine may be configured to
// honor it.
func usesCaseSensitivity(qt domain.QuestionType) bool {
	switch qt {
	case domain.ShortAnswer, domain.SelectFromList, domain.DragAndDrop, domain.MultipleResponse:
		return true
	default:
		return false
	}
}

func containsFold(items []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}
	return false
}
