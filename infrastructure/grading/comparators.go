package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/examprep/answerkey/internal/domain"
)

// Comparator names reported in verdicts. Known question types use their wire
// tag; the guard and the unknown-type fallback have their own names so they
// show up distinctly in logs and metrics.
const (
	ComparatorGuard    = "guard"
	ComparatorFallback = "unrecognized_type_fallback"
)

// outcome is what a comparator decided and why.
type outcome struct {
	comparator string
	correct    bool
	stage      string
	reason     domain.FailureReason
	level      domain.DiagnosticLevel
	err        error
	// input is the raw offending input; it is truncated before it leaves
	// the validator.
	input    string
	message  string
	distance int
}

func pass(comparator, stage string) outcome {
	return outcome{
		comparator: comparator,
		correct:    true,
		stage:      stage,
		reason:     domain.ReasonNone,
		level:      domain.LevelDebug,
		distance:   -1,
	}
}

func fail(comparator, stage string, reason domain.FailureReason) outcome {
	return outcome{
		comparator: comparator,
		stage:      stage,
		reason:     reason,
		level:      levelFor(reason),
		distance:   -1,
	}
}

func levelFor(reason domain.FailureReason) domain.DiagnosticLevel {
	switch reason {
	case domain.ReasonMalformedAnswer, domain.ReasonUnknownQuestionType:
		return domain.LevelWarn
	case domain.ReasonMalformedCorrectAnswer, domain.ReasonInternalError:
		return domain.LevelError
	default:
		return domain.LevelDebug
	}
}

// compare dispatches to the comparator for the variant of q.
func (v *Validator) compare(q domain.Question, user string) outcome {
	switch q := q.(type) {
	case domain.MultipleChoiceQuestion:
		return compareChoice(string(domain.MultipleChoice), user, q.Correct)
	case domain.EitherOrQuestion:
		return compareChoice(string(domain.EitherOr), user, q.Correct)
	case domain.NumericalEntryQuestion:
		return v.compareNumeric(q, user)
	case domain.ShortAnswerQuestion:
		return v.compareShortAnswer(q, user)
	case domain.SelectFromListQuestion:
		return compareSelectFromList(q, user)
	case domain.DragAndDropQuestion:
		return compareDragAndDrop(q, user)
	case domain.MultipleResponseQuestion:
		return v.compareMultipleResponse(q, user)
	case domain.UnrecognizedQuestion:
		return v.compareUnrecognized(q, user)
	default:
		out := fail(ComparatorGuard, domain.StageDispatch, domain.ReasonInternalError)
		out.message = fmt.Sprintf("unsupported question variant %T", q)
		return out
	}
}

// compareChoice grades single-pick questions. Case is never significant.
func compareChoice(comparator, user, correct string) outcome {
	if equalText(user, correct, false) {
		return pass(comparator, domain.StageExact)
	}
	return fail(comparator, domain.StageExact, domain.ReasonMismatch)
}

// compareNumeric tries textual equality, then the acceptable answers, then
// an absolute tolerance on the parsed values.
func (v *Validator) compareNumeric(q domain.NumericalEntryQuestion, user string) outcome {
	const comparator = string(domain.NumericalEntry)

	if equalText(user, q.Correct, false) {
		return pass(comparator, domain.StageExact)
	}
	if matchAny(user, q.Acceptable, false) >= 0 {
		return pass(comparator, domain.StageAcceptable)
	}

	got, err := parseNumber(user)
	if err != nil {
		out := fail(comparator, domain.StageNumericTolerance, domain.ReasonMismatch)
		out.message = "answer is not a number"
		return out
	}
	want, err := parseNumber(q.Correct)
	if err != nil {
		out := fail(comparator, domain.StageNumericTolerance, domain.ReasonMismatch)
		out.message = "stored correct answer is not a number"
		return out
	}
	if math.Abs(got-want) < v.config.NumericTolerance {
		return pass(comparator, domain.StageNumericTolerance)
	}
	return fail(comparator, domain.StageNumericTolerance, domain.ReasonMismatch)
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// compareUnrecognized is the safety net for tags outside the known set:
// byte-for-byte equality, or a hard failure in strict mode. Either way the
// diagnostic is raised to warn.
func (v *Validator) compareUnrecognized(q domain.UnrecognizedQuestion, user string) outcome {
	var out outcome
	switch {
	case v.config.StrictUnknownTypes:
		out = fail(ComparatorFallback, domain.StageByteEquality, domain.ReasonUnknownQuestionType)
	case user == q.Correct:
		out = pass(ComparatorFallback, domain.StageByteEquality)
	default:
		out = fail(ComparatorFallback, domain.StageByteEquality, domain.ReasonMismatch)
	}
	out.level = domain.LevelWarn
	out.input = string(q.Tag)
	out.message = fmt.Sprintf("unexpected question type tag %q", string(q.Tag))
	return out
}
