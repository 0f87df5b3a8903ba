package domain

// BlankMarker is the canonical blank placeholder written into normalized
// question text.
const BlankMarker = "___"

// BlankFormat records which blank notation a question text used before
// normalization.
type BlankFormat string

// Recognized blank notations.
const (
	FormatNone       BlankFormat = "none"
	FormatBlankTag   BlankFormat = "blank_tag"
	FormatUnderscore BlankFormat = "underscore"
	FormatBracket    BlankFormat = "bracket"
	FormatAsterisk   BlankFormat = "asterisk"
	FormatMixed      BlankFormat = "mixed"
)

// NormalizationResult is produced once when a question is imported or
// refreshed. It is stored with the question and never recomputed while
// grading.
type NormalizationResult struct {
	// NormalizedText is the input with every recognized blank rewritten to
	// BlankMarker.
	NormalizedText string `json:"normalized_text" yaml:"normalized_text"`

	// BlankPositions lists the blank positions implied by the text, sorted
	// ascending.
	BlankPositions []int `json:"blank_positions" yaml:"blank_positions"`

	// OriginalFormat is the notation found in the input, or FormatMixed
	// when more than one was present.
	OriginalFormat BlankFormat `json:"original_format" yaml:"original_format"`
}

// BlankCount returns the number of blanks implied by the text.
func (r NormalizationResult) BlankCount() int { return len(r.BlankPositions) }

// BlankConfigReport is the outcome of comparing the blanks implied by a
// question text against its authored blank descriptors.
type BlankConfigReport struct {
	Valid                bool        `json:"valid"`
	TextBlankCount       int         `json:"text_blank_count"`
	ConfiguredBlankCount int         `json:"configured_blank_count"`
	Format               BlankFormat `json:"format"`

	// UnconfiguredPositions are positions named in the text with no blank
	// descriptor carrying that id. Only meaningful for blank_N notation.
	UnconfiguredPositions []int `json:"unconfigured_positions,omitempty"`

	// UnreferencedBlankIDs are descriptor ids that the text never names.
	// Only meaningful for blank_N notation.
	UnreferencedBlankIDs []int `json:"unreferenced_blank_ids,omitempty"`

	// DuplicateBlankIDs are descriptor ids that appear more than once.
	DuplicateBlankIDs []int `json:"duplicate_blank_ids,omitempty"`

	Message string `json:"message"`
}
