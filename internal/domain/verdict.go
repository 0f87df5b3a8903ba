package domain

import (
	"time"
)

// FailureReason classifies why a verdict is negative. A positive verdict
// always carries ReasonNone.
type FailureReason string

// Failure reasons reported in verdicts and diagnostics.
const (
	ReasonNone                   FailureReason = "none"
	ReasonEmptyAnswer            FailureReason = "empty_answer"
	ReasonMismatch               FailureReason = "mismatch"
	ReasonMalformedAnswer        FailureReason = "malformed_answer"
	ReasonMalformedCorrectAnswer FailureReason = "malformed_correct_answer"
	ReasonUnknownQuestionType    FailureReason = "unknown_question_type"
	ReasonInternalError          FailureReason = "internal_error"
)

// Stages name the sub-comparison that decided a verdict.
const (
	StageGuard            = "guard"
	StageDispatch         = "dispatch"
	StageDecode           = "decode"
	StageExact            = "exact"
	StageAcceptable       = "acceptable"
	StageNumericTolerance = "numeric_tolerance"
	StagePerBlank         = "per_blank"
	StageSingleBlank      = "single_blank"
	StageSet              = "set"
	StageByteEquality     = "byte_equality"
	// StageZonePrefix is followed by the normalized zone key.
	StageZonePrefix = "zone:"
)

// Verdict is the correctness result for one graded submission. It is
// consumed immediately by the caller and never persisted on its own.
type Verdict struct {
	QuestionID   string        `json:"question_id,omitempty"`
	QuestionType QuestionType  `json:"question_type"`
	Correct      bool          `json:"correct"`
	Comparator   string        `json:"comparator"`
	Stage        string        `json:"stage,omitempty"`
	Reason       FailureReason `json:"reason"`
}

// DiagnosticLevel is the severity of a diagnostic.
type DiagnosticLevel int

// Diagnostic levels, ordered by severity.
const (
	LevelDebug DiagnosticLevel = iota
	LevelWarn
	LevelError
)

func (l DiagnosticLevel) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "debug"
	}
}

// Diagnostic describes how a verdict was reached. It is handed to an
// observer and never returned through the boolean boundary.
type Diagnostic struct {
	Level        DiagnosticLevel
	QuestionID   string
	QuestionType QuestionType
	Comparator   string
	Stage        string
	Reason       FailureReason
	Correct      bool

	UserAnswerLength    int
	CorrectAnswerLength int
	HasOptions          bool

	// Input is the offending input, truncated, for malformed answers and
	// data defects.
	Input   string
	Message string

	// NearestEditDistance is the Levenshtein distance from a rejected free
	// text answer to the closest accepted phrasing, or -1 when not computed.
	NearestEditDistance int

	Err     error
	Latency time.Duration
}
