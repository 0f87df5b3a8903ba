package grading

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/examprep/answerkey/internal/domain"
)

// compareShortAnswer grades free text. An object-encoded submission holds
// one value per blank; its values are joined in property order and graded
// as a single phrase.
func (v *Validator) compareShortAnswer(q domain.ShortAnswerQuestion, user string) outcome {
	const comparator = string(domain.ShortAnswer)

	candidate := user
	var decodeErr error
	if isObjectEncoded(user) {
		fields, err := decodeObject(user)
		switch {
		case err != nil:
			decodeErr = domain.NewDecodeError("user", "blank map", err)
		case len(fields) > 0:
			values := make([]string, len(fields))
			for i, f := range fields {
				values[i] = f.value
			}
			candidate = strings.Join(values, v.config.MultiBlankSeparator)
		}
	}

	if equalText(candidate, q.Correct, q.CaseSensitive) {
		return pass(comparator, domain.StageExact)
	}
	if matchAny(candidate, q.Acceptable, q.CaseSensitive) >= 0 {
		return pass(comparator, domain.StageAcceptable)
	}

	out := fail(comparator, domain.StageAcceptable, domain.ReasonMismatch)
	if len(q.Acceptable) == 0 {
		out.stage = domain.StageExact
	}
	accepted := append([]string{q.Correct}, q.Acceptable...)
	out.distance = nearestDistance(candidate, accepted, q.CaseSensitive)
	if decodeErr != nil {
		out.err = decodeErr
		out.input = user
		out.message = "object-encoded answer did not decode; graded as plain text"
	}
	return out
}

// compareSelectFromList grades dropdown blanks. With several blanks every
// blank must match (no partial credit); a single blank may be answered
// without the object wrapper.
func compareSelectFromList(q domain.SelectFromListQuestion, user string) outcome {
	const comparator = string(domain.SelectFromList)

	if len(q.Blanks) == 0 {
		if equalText(user, q.Correct, q.CaseSensitive) {
			return pass(comparator, domain.StageExact)
		}
		return fail(comparator, domain.StageExact, domain.ReasonMismatch)
	}

	if !isObjectEncoded(user) {
		if len(q.Blanks) == 1 {
			if equalText(user, q.Blanks[0].CorrectAnswer, q.CaseSensitive) {
				return pass(comparator, domain.StageSingleBlank)
			}
			return fail(comparator, domain.StageSingleBlank, domain.ReasonMismatch)
		}
		out := fail(comparator, domain.StageDecode, domain.ReasonMalformedAnswer)
		out.input = user
		out.message = fmt.Sprintf("expected an object-encoded answer for %d blanks", len(q.Blanks))
		return out
	}

	fields, err := decodeObject(user)
	if err != nil {
		out := fail(comparator, domain.StageDecode, domain.ReasonMalformedAnswer)
		out.err = domain.NewDecodeError("user", "blank map", err)
		out.input = user
		return out
	}
	answers := make(map[int]string, len(fields))
	for _, f := range fields {
		if id, ok := blankKey(f.key); ok {
			answers[id] = f.value
		}
	}

	for _, b := range q.Blanks {
		got, ok := answers[b.BlankID]
		if !ok || !equalText(got, b.CorrectAnswer, q.CaseSensitive) {
			out := fail(comparator, domain.StagePerBlank, domain.ReasonMismatch)
			out.message = fmt.Sprintf("blank %d does not match", b.BlankID)
			if !ok {
				out.message = fmt.Sprintf("blank %d not answered", b.BlankID)
			}
			return out
		}
	}
	return pass(comparator, domain.StagePerBlank)
}

// blankKey reads a blank id from an answer key such as "2" or "blank_2".
func blankKey(key string) (int, bool) {
	key = strings.TrimSpace(key)
	if len(key) > len("blank_") && strings.EqualFold(key[:len("blank_")], "blank_") {
		key = key[len("blank_"):]
	}
	id, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return id, true
}
