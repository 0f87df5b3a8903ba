// Package blanks rewrites the ad-hoc blank notations found in question text
// to the canonical marker and reports where the blanks are.
//
// Every function in this package is pure and safe for concurrent use.
package blanks

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/examprep/answerkey/internal/domain"
)

// blankPattern matches, leftmost-first, one occurrence of any recognized
// notation:
//
//	blank_<n>   numbered tag, n a positive integer
//	[ ]         empty brackets, whitespace inside allowed
//	*...*       paired asterisks around a non-empty run without asterisks
//	___         three or more underscores
//
// Runs of two or more asterisks are matched as literal text so that a stray
// asterisk left over from one pass can never pair up on the next. Brackets
// and asterisks absorb up to two adjacent underscores so that the emitted
// marker never touches a stray underscore.
var blankPattern = regexp.MustCompile(
	`\bblank_([1-9][0-9]*)\b` +
		`|(_{0,2}\[\s*\]_{0,2})` +
		`|(\*{2,})` +
		`|(_{0,2}\*[^*]+?\*_{0,2})` +
		`|(_{3,})`,
)

// markerPattern matches canonical markers and any longer underscore run.
var markerPattern = regexp.MustCompile(`_{3,}`)

// token is one recognized blank occurrence.
type token struct {
	start, end int
	format     domain.BlankFormat
	// tag is the number of a blank_<n> token, zero otherwise.
	tag int
}

// scan returns every blank occurrence in text, in source order. Literal
// asterisk runs are consumed but not returned.
func scan(text string) []token {
	matches := blankPattern.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]token, 0, len(matches))
	for _, m := range matches {
		tok := token{start: m[0], end: m[1]}
		switch {
		case m[2] >= 0:
			tok.format = domain.FormatBlankTag
			// The pattern bounds the digits, so Atoi only fails on overflow;
			// such a tag is left as plain text.
			n, err := strconv.Atoi(text[m[2]:m[3]])
			if err != nil {
				continue
			}
			tok.tag = n
		case m[4] >= 0:
			tok.format = domain.FormatBracket
		case m[6] >= 0:
			continue
		case m[8] >= 0:
			tok.format = domain.FormatAsterisk
		default:
			tok.format = domain.FormatUnderscore
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// NormalizeQuestionBlanks rewrites every recognized blank notation in text to
// domain.BlankMarker and returns the sorted blank positions the text implies.
//
// Numbered blank_<n> tags contribute n; repeated tags contribute once. Every
// other notation takes the next sequential position, len(positions)+1,
// skipping numbers already claimed by a tag. Tags are collected before
// sequential blanks are numbered, regardless of where they appear.
//
// Normalizing already-normalized text returns the same text. Empty text and
// text without any notation are returned unchanged with FormatNone.
func NormalizeQuestionBlanks(text string) domain.NormalizationResult {
	result := domain.NormalizationResult{
		NormalizedText: text,
		BlankPositions: []int{},
		OriginalFormat: domain.FormatNone,
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	tokens := scan(text)
	if len(tokens) == 0 {
		return result
	}

	taken := make(map[int]bool, len(tokens))
	positions := make([]int, 0, len(tokens))
	formats := make(map[domain.BlankFormat]bool, 4)

	for _, tok := range tokens {
		formats[tok.format] = true
		if tok.format == domain.FormatBlankTag && !taken[tok.tag] {
			taken[tok.tag] = true
			positions = append(positions, tok.tag)
		}
	}
	for _, tok := range tokens {
		if tok.format == domain.FormatBlankTag {
			continue
		}
		next := len(positions) + 1
		for taken[next] {
			next++
		}
		taken[next] = true
		positions = append(positions, next)
	}
	slices.Sort(positions)

	result.NormalizedText = rewrite(text, tokens)
	result.BlankPositions = positions
	result.OriginalFormat = detectFormat(formats)
	return result
}

// rewrite replaces each token with the canonical marker. A single space is
// inserted wherever a marker would otherwise touch an underscore, so two
// blanks never merge into one run on a later pass.
func rewrite(text string, tokens []token) string {
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, tok := range tokens {
		b.WriteString(text[last:tok.start])
		if out := b.String(); strings.HasSuffix(out, "_") {
			b.WriteByte(' ')
		}
		b.WriteString(domain.BlankMarker)
		if strings.HasPrefix(text[tok.end:], "_") {
			b.WriteByte(' ')
		}
		last = tok.end
	}
	b.WriteString(text[last:])
	return b.String()
}

func detectFormat(found map[domain.BlankFormat]bool) domain.BlankFormat {
	switch len(found) {
	case 0:
		return domain.FormatNone
	case 1:
		for f := range found {
			return f
		}
	}
	return domain.FormatMixed
}

// CountBlanks returns the number of blanks implied by text.
func CountBlanks(text string) int {
	return NormalizeQuestionBlanks(text).BlankCount()
}

// ExtractBlankPositions returns the sorted blank positions implied by text.
func ExtractBlankPositions(text string) []int {
	return NormalizeQuestionBlanks(text).BlankPositions
}

// CountMarkers counts canonical markers in text that has already been
// normalized. Unlike CountBlanks it does not collapse repeated blank tags.
func CountMarkers(normalized string) int {
	return len(markerPattern.FindAllStringIndex(normalized, -1))
}

// MapBlankIDsToPositions maps each descriptor's BlankID to its 1-based
// position in blanks. When an id repeats, the first occurrence wins.
func MapBlankIDsToPositions(blanks []domain.BlankDescriptor) map[int]int {
	index := make(map[int]int, len(blanks))
	for i, b := range blanks {
		if _, seen := index[b.BlankID]; seen {
			continue
		}
		index[b.BlankID] = i + 1
	}
	return index
}
