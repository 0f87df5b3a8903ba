package blanks

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/answerkey/internal/domain"
)

func TestNormalizeQuestionBlanks(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantText      string
		wantPositions []int
		wantFormat    domain.BlankFormat
	}{
		{
			name:          "numbered tags",
			text:          "Multiple blank_1 and blank_2 here",
			wantText:      "Multiple ___ and ___ here",
			wantPositions: []int{1, 2},
			wantFormat:    domain.FormatBlankTag,
		},
		{
			name:          "tags out of order are sorted",
			text:          "First blank_3, then blank_1, then blank_2.",
			wantText:      "First ___, then ___, then ___.",
			wantPositions: []int{1, 2, 3},
			wantFormat:    domain.FormatBlankTag,
		},
		{
			name:          "repeated tag keeps one position",
			text:          "blank_1 equals blank_1",
			wantText:      "___ equals ___",
			wantPositions: []int{1},
			wantFormat:    domain.FormatBlankTag,
		},
		{
			name:          "tag needs word boundaries",
			text:          "myblank_1 and blank_0 and blank_2x",
			wantText:      "myblank_1 and blank_0 and blank_2x",
			wantPositions: []int{},
			wantFormat:    domain.FormatNone,
		},
		{
			name:          "empty brackets",
			text:          "The [ ] sat on the [].",
			wantText:      "The ___ sat on the ___.",
			wantPositions: []int{1, 2},
			wantFormat:    domain.FormatBracket,
		},
		{
			name:          "brackets with content are not blanks",
			text:          "See [note] and [  ]",
			wantText:      "See [note] and ___",
			wantPositions: []int{1},
			wantFormat:    domain.FormatBracket,
		},
		{
			name:          "paired asterisks",
			text:          "Water boils at *100* degrees and freezes at *0*.",
			wantText:      "Water boils at ___ degrees and freezes at ___.",
			wantPositions: []int{1, 2},
			wantFormat:    domain.FormatAsterisk,
		},
		{
			name:          "lone asterisk is text",
			text:          "Footnote* applies",
			wantText:      "Footnote* applies",
			wantPositions: []int{},
			wantFormat:    domain.FormatNone,
		},
		{
			name:          "double asterisks are literal",
			text:          "**bold** text",
			wantText:      "**bold** text",
			wantPositions: []int{},
			wantFormat:    domain.FormatNone,
		},
		{
			name:          "stray asterisks never pair across a blank",
			text:          "**x***y",
			wantText:      "**x***y",
			wantPositions: []int{},
			wantFormat:    domain.FormatNone,
		},
		{
			name:          "single pair next to a literal run",
			text:          "*a***b",
			wantText:      "___**b",
			wantPositions: []int{1},
			wantFormat:    domain.FormatAsterisk,
		},
		{
			name:          "underscore runs collapse",
			text:          "Fill _____ and ___ and __ here",
			wantText:      "Fill ___ and ___ and __ here",
			wantPositions: []int{1, 2},
			wantFormat:    domain.FormatUnderscore,
		},
		{
			name:          "mixed notations",
			text:          "blank_1 goes with [ ] and ____",
			wantText:      "___ goes with ___ and ___",
			wantPositions: []int{1, 2, 3},
			wantFormat:    domain.FormatMixed,
		},
		{
			name:          "sequential blanks skip numbers claimed by tags",
			text:          "[ ] then blank_1",
			wantText:      "___ then ___",
			wantPositions: []int{1, 2},
			wantFormat:    domain.FormatMixed,
		},
		{
			name:          "adjacent blanks stay separate",
			text:          "[ ][ ]",
			wantText:      "___ ___",
			wantPositions: []int{1, 2},
			wantFormat:    domain.FormatBracket,
		},
		{
			name:          "bracket absorbs stray underscores",
			text:          "a__[ ]_b",
			wantText:      "a___b",
			wantPositions: []int{1},
			wantFormat:    domain.FormatBracket,
		},
		{
			name:          "no notation",
			text:          "What is the capital of France?",
			wantText:      "What is the capital of France?",
			wantPositions: []int{},
			wantFormat:    domain.FormatNone,
		},
		{
			name:          "empty text",
			text:          "",
			wantText:      "",
			wantPositions: []int{},
			wantFormat:    domain.FormatNone,
		},
		{
			name:          "whitespace only",
			text:          "   ",
			wantText:      "   ",
			wantPositions: []int{},
			wantFormat:    domain.FormatNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeQuestionBlanks(tt.text)

			assert.Equal(t, tt.wantText, got.NormalizedText)
			assert.Equal(t, tt.wantPositions, got.BlankPositions)
			assert.Equal(t, tt.wantFormat, got.OriginalFormat)
		})
	}
}

func TestNormalizeQuestionBlanks_AlreadyNormalized(t *testing.T) {
	first := NormalizeQuestionBlanks("Multiple blank_1 and blank_2 here")
	second := NormalizeQuestionBlanks(first.NormalizedText)

	assert.Equal(t, first.NormalizedText, second.NormalizedText)
	assert.Equal(t, first.BlankPositions, second.BlankPositions)
	assert.Equal(t, domain.FormatUnderscore, second.OriginalFormat)
}

// TestNormalizeIdempotenceProperty checks that normalizing twice yields the
// same text as normalizing once, over random inputs built from notation
// fragments.
func TestNormalizeIdempotenceProperty(t *testing.T) {
	fragments := []string{
		"blank_1", "blank_12", " ", "[ ]", "[]", "*x*", "*", "_", "__", "___",
		"_____", "word", "blank_", "[", "]", ".", "\n", "**", "a_b",
	}

	err := quick.Check(func(picks []uint8) bool {
		var text string
		for _, p := range picks {
			text += fragments[int(p)%len(fragments)]
		}
		once := NormalizeQuestionBlanks(text).NormalizedText
		twice := NormalizeQuestionBlanks(once).NormalizedText
		return once == twice
	}, &quick.Config{MaxCount: 2000})
	assert.NoError(t, err, "Normalization should be idempotent")
}

func TestNormalizePositionsSortedProperty(t *testing.T) {
	err := quick.Check(func(text string) bool {
		positions := NormalizeQuestionBlanks(text).BlankPositions
		for i := 1; i < len(positions); i++ {
			if positions[i-1] >= positions[i] {
				return false
			}
		}
		return true
	}, &quick.Config{MaxCount: 1000})
	assert.NoError(t, err, "Positions should be strictly ascending")
}

func TestCountBlanksAndExtractPositions(t *testing.T) {
	text := "Pick blank_2 then blank_1 and [ ]"

	assert.Equal(t, 3, CountBlanks(text))
	assert.Equal(t, []int{1, 2, 3}, ExtractBlankPositions(text))
	assert.Equal(t, 0, CountBlanks("nothing here"))
}

func TestCountMarkers(t *testing.T) {
	assert.Equal(t, 2, CountMarkers("___ equals ___"))
	assert.Equal(t, 0, CountMarkers("no markers __ here"))
}

func TestMapBlankIDsToPositions(t *testing.T) {
	blanks := []domain.BlankDescriptor{
		{BlankID: 7, CorrectAnswer: "a"},
		{BlankID: 3, CorrectAnswer: "b"},
		{BlankID: 7, CorrectAnswer: "c"},
		{BlankID: 1, CorrectAnswer: "d"},
	}

	got := MapBlankIDsToPositions(blanks)

	require.Len(t, got, 3)
	assert.Equal(t, 1, got[7], "first occurrence wins")
	assert.Equal(t, 2, got[3])
	assert.Equal(t, 4, got[1])
	assert.Empty(t, MapBlankIDsToPositions(nil))
}

func FuzzNormalizeQuestionBlanks(f *testing.F) {
	f.Add("Multiple blank_1 and blank_2 here")
	f.Add("[ ] *a* ____ blank_3")
	f.Add("a__[ ]__b")
	f.Add("*[ ]*")
	f.Add("blank_99999999999999999999")
	f.Add("")
	f.Add("héllo ___ wørld")

	f.Fuzz(func(t *testing.T, text string) {
		got := NormalizeQuestionBlanks(text)

		again := NormalizeQuestionBlanks(got.NormalizedText)
		if again.NormalizedText != got.NormalizedText {
			t.Errorf("not idempotent: %q -> %q -> %q", text, got.NormalizedText, again.NormalizedText)
		}
		if got.OriginalFormat == domain.FormatNone && got.NormalizedText != text {
			t.Errorf("text without notation changed: %q -> %q", text, got.NormalizedText)
		}
		if len(got.BlankPositions) == 0 && got.OriginalFormat != domain.FormatNone {
			t.Errorf("format %s reported without positions for %q", got.OriginalFormat, text)
		}
	})
}
