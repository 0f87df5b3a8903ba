package domain

// Question is the typed view of a question version. Each variant carries only
// the options its comparator reads, so a drag-and-drop question cannot carry
// blanks and a multiple-choice question cannot carry an acceptable-answer
// list.
//
// The interface is sealed; the set of variants is closed.
type Question interface {
	// Type returns the tag the variant was built for.
	Type() QuestionType

	question()
}

// MultipleChoiceQuestion is a single-letter choice.
type MultipleChoiceQuestion struct {
	Correct string
}

// NumericalEntryQuestion is a numeric value graded with an absolute
// tolerance after string and acceptable-list lookups fail.
type NumericalEntryQuestion struct {
	Correct    string
	Acceptable []string
}

// ShortAnswerQuestion is free text, single- or multi-blank.
type ShortAnswerQuestion struct {
	Correct       string
	Acceptable    []string
	CaseSensitive bool
	// Blanks is only used for configuration linting; grading compares the
	// joined answer against Correct and Acceptable.
	Blanks []BlankDescriptor
}

// SelectFromListQuestion is one or more dropdown blanks.
type SelectFromListQuestion struct {
	// Correct is used only when no blanks are configured.
	Correct       string
	Blanks        []BlankDescriptor
	CaseSensitive bool
}

// DragAndDropQuestion assigns items to unordered zones.
type DragAndDropQuestion struct {
	Correct       ZoneAssignment
	Zones         []DropZoneDescriptor
	CaseSensitive bool
}

// MultipleResponseQuestion is an unordered multi-select.
type MultipleResponseQuestion struct {
	Correct       []string
	CaseSensitive bool
}

// EitherOrQuestion is a forced binary pick. It grades like
// MultipleChoiceQuestion but stays a separate variant for upstream analytics.
type EitherOrQuestion struct {
	Correct string
}

// UnrecognizedQuestion carries a tag the engine does not support. It is
// graded by byte equality, or rejected outright in strict mode.
type UnrecognizedQuestion struct {
	Tag     QuestionType
	Correct string
}

func (MultipleChoiceQuestion) Type() QuestionType   { return MultipleChoice }
func (NumericalEntryQuestion) Type() QuestionType   { return NumericalEntry }
func (ShortAnswerQuestion) Type() QuestionType      { return ShortAnswer }
func (SelectFromListQuestion) Type() QuestionType   { return SelectFromList }
func (DragAndDropQuestion) Type() QuestionType      { return DragAndDrop }
func (MultipleResponseQuestion) Type() QuestionType { return MultipleResponse }
func (EitherOrQuestion) Type() QuestionType         { return EitherOr }
func (q UnrecognizedQuestion) Type() QuestionType   { return q.Tag }

func (MultipleChoiceQuestion) question()   {}
func (NumericalEntryQuestion) question()   {}
func (ShortAnswerQuestion) question()      {}
func (SelectFromListQuestion) question()   {}
func (DragAndDropQuestion) question()      {}
func (MultipleResponseQuestion) question() {}
func (EitherOrQuestion) question()         {}
func (UnrecognizedQuestion) question()     {}

// ZoneAssignment maps a zone key to the item identifiers placed in it.
// Item order inside a zone carries no meaning.
type ZoneAssignment map[string][]string
