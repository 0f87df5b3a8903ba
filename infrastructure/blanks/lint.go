package blanks

import (
	"fmt"
	"slices"

	"github.com/examprep/answerkey/internal/domain"
)

// ValidateBlankConfiguration compares the blanks implied by text against the
// authored descriptors. It is an authoring-time lint and never runs while
// grading.
//
// TextBlankCount is the number of distinct blank positions, not the number
// of markers in the normalized text: a blank_<n> tag repeated in the text
// names one blank and is counted once, so "x blank_1 y blank_1" needs exactly
// one descriptor. CountMarkers on the normalized text would report two.
//
// The report is valid when the counts agree and no descriptor id repeats.
// For blank_<n> notation the ids named in the text are also matched against
// the descriptor ids.
func ValidateBlankConfiguration(text string, blanks []domain.BlankDescriptor) domain.BlankConfigReport {
	norm := NormalizeQuestionBlanks(text)

	report := domain.BlankConfigReport{
		TextBlankCount:       norm.BlankCount(),
		ConfiguredBlankCount: len(blanks),
		Format:               norm.OriginalFormat,
	}

	ids := make(map[int]int, len(blanks))
	for _, b := range blanks {
		ids[b.BlankID]++
		if ids[b.BlankID] == 2 {
			report.DuplicateBlankIDs = append(report.DuplicateBlankIDs, b.BlankID)
		}
	}
	slices.Sort(report.DuplicateBlankIDs)

	if norm.OriginalFormat == domain.FormatBlankTag {
		named := make(map[int]bool, len(norm.BlankPositions))
		for _, pos := range norm.BlankPositions {
			named[pos] = true
			if ids[pos] == 0 {
				report.UnconfiguredPositions = append(report.UnconfiguredPositions, pos)
			}
		}
		for id := range ids {
			if !named[id] {
				report.UnreferencedBlankIDs = append(report.UnreferencedBlankIDs, id)
			}
		}
		slices.Sort(report.UnreferencedBlankIDs)
	}

	report.Valid = report.TextBlankCount == report.ConfiguredBlankCount &&
		len(report.DuplicateBlankIDs) == 0 &&
		len(report.UnconfiguredPositions) == 0 &&
		len(report.UnreferencedBlankIDs) == 0
	report.Message = describe(report)
	return report
}

func describe(r domain.BlankConfigReport) string {
	switch {
	case r.Valid:
		return fmt.Sprintf("blank configuration matches: %d blank(s)", r.TextBlankCount)
	case r.TextBlankCount != r.ConfiguredBlankCount:
		return fmt.Sprintf("blank count mismatch: text has %d, %d configured",
			r.TextBlankCount, r.ConfiguredBlankCount)
	case len(r.DuplicateBlankIDs) > 0:
		return fmt.Sprintf("duplicate blank ids: %v", r.DuplicateBlankIDs)
	default:
		return fmt.Sprintf("blank ids disagree: text names %v without descriptors, descriptors %v unused",
			r.UnconfiguredPositions, r.UnreferencedBlankIDs)
	}
}
