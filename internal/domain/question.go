// Package domain contains pure, dependency-free domain models and types
// for the answer validation engine.
package domain

import (
	"strings"
)

// QuestionType identifies which comparator grades a question.
// It is immutable per question version.
type QuestionType string

// Supported question types. The string values are the wire tags stored
// alongside each question version.
const (
	MultipleChoice   QuestionType = "multiple_choice"
	NumericalEntry   QuestionType = "numerical_entry"
	ShortAnswer      QuestionType = "short_answer"
	SelectFromList   QuestionType = "select_from_list"
	DragAndDrop      QuestionType = "drag_and_drop"
	MultipleResponse QuestionType = "multiple_response"
	EitherOr         QuestionType = "either_or"
)

// knownTypes indexes the supported tags by their squashed spelling so that
// "SelectFromList", "select-from-list" and "select from list" resolve to the
// same variant.
var knownTypes = map[string]QuestionType{
	"multiplechoice":   MultipleChoice,
	"numericalentry":   NumericalEntry,
	"shortanswer":      ShortAnswer,
	"selectfromlist":   SelectFromList,
	"draganddrop":      DragAndDrop,
	"multipleresponse": MultipleResponse,
	"eitheror":         EitherOr,
}

// QuestionTypes returns all supported question types in a stable order.
func QuestionTypes() []QuestionType {
	return []QuestionType{
		MultipleChoice,
		NumericalEntry,
		ShortAnswer,
		SelectFromList,
		DragAndDrop,
		MultipleResponse,
		EitherOr,
	}
}

// ParseQuestionType resolves a raw tag to a QuestionType. Unknown tags are
// returned verbatim so callers can still grade them through the fallback
// path; use Known to tell the two apart.
func ParseQuestionType(raw string) QuestionType {
	if qt, ok := knownTypes[squash(raw)]; ok {
		return qt
	}
	return QuestionType(raw)
}

// Known reports whether qt is one of the supported question types in its
// canonical spelling.
func (qt QuestionType) Known() bool {
	switch qt {
	case MultipleChoice, NumericalEntry, ShortAnswer, SelectFromList,
		DragAndDrop, MultipleResponse, EitherOr:
		return true
	}
	return false
}

// UsesBlanks reports whether questions of this type may carry blank
// descriptors whose count must agree with the blanks in the question text.
func (qt QuestionType) UsesBlanks() bool {
	return qt == SelectFromList || qt == ShortAnswer
}

func (qt QuestionType) String() string { return string(qt) }

func squash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case '_', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidationOptions is the configuration bag attached to a question version.
// The engine treats it as read-only; authoring replaces it wholesale.
type ValidationOptions struct {
	// CaseSensitive controls string comparison for comparators that honor it.
	CaseSensitive bool `json:"case_sensitive" yaml:"case_sensitive"`

	// AcceptableAnswers lists alternate correct phrasings, checked after the
	// primary correct answer. Order only matters for display.
	AcceptableAnswers []string `json:"acceptable_answers,omitempty" yaml:"acceptable_answers,omitempty"`

	// Blanks describes each blank of a multi-blank question.
	Blanks []BlankDescriptor `json:"blanks,omitempty" yaml:"blanks,omitempty" validate:"omitempty,dive"`

	// DropZones describes the containers of a drag-and-drop question.
	DropZones []DropZoneDescriptor `json:"drop_zones,omitempty" yaml:"drop_zones,omitempty" validate:"omitempty,dive"`
}

// IsZero reports whether no option has been set.
func (o ValidationOptions) IsZero() bool {
	return !o.CaseSensitive &&
		len(o.AcceptableAnswers) == 0 &&
		len(o.Blanks) == 0 &&
		len(o.DropZones) == 0
}

// BlankDescriptor describes one blank of a multi-blank question.
// BlankID is the key used in object-encoded user answers.
type BlankDescriptor struct {
	BlankID       int      `json:"blank_id" yaml:"blank_id" validate:"min=1"`
	AnswerChoices []string `json:"answer_choices,omitempty" yaml:"answer_choices,omitempty"`
	CorrectAnswer string   `json:"correct_answer" yaml:"correct_answer"`
}

// DropZoneDescriptor describes one drag-and-drop container.
type DropZoneDescriptor struct {
	ZoneID int    `json:"zone_id" yaml:"zone_id" validate:"min=1"`
	Label  string `json:"label" yaml:"label"`
}

// Submission is one graded answer at the string boundary. CorrectAnswer and
// Options are the stored data of the question version; UserAnswer is the
// live submission.
type Submission struct {
	QuestionID    string            `json:"question_id,omitempty" yaml:"question_id,omitempty"`
	QuestionType  QuestionType      `json:"question_type" yaml:"question_type"`
	UserAnswer    string            `json:"user_answer" yaml:"user_answer"`
	CorrectAnswer string            `json:"correct_answer" yaml:"correct_answer"`
	Options       ValidationOptions `json:"options" yaml:"options"`
}
