package grading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/examprep/answerkey/internal/domain"
)

// BuildQuestion decodes a stored correct answer and its option bag into the
// typed variant for qt. Only drag-and-drop can fail: its correct answer must
// be a zone assignment, and an undecodable one is a data defect.
//
// Unknown tags produce a domain.UnrecognizedQuestion rather than an error so
// the caller can still apply the fallback comparison.
func BuildQuestion(qt domain.QuestionType, correct string, opts domain.ValidationOptions) (domain.Question, error) {
	switch parsed := domain.ParseQuestionType(string(qt)); parsed {
	case domain.MultipleChoice:
		return domain.MultipleChoiceQuestion{Correct: correct}, nil
	case domain.EitherOr:
		return domain.EitherOrQuestion{Correct: correct}, nil
	case domain.NumericalEntry:
		return domain.NumericalEntryQuestion{
			Correct:    correct,
			Acceptable: opts.AcceptableAnswers,
		}, nil
	case domain.ShortAnswer:
		return domain.ShortAnswerQuestion{
			Correct:       correct,
			Acceptable:    opts.AcceptableAnswers,
			CaseSensitive: opts.CaseSensitive,
			Blanks:        opts.Blanks,
		}, nil
	case domain.SelectFromList:
		return domain.SelectFromListQuestion{
			Correct:       correct,
			Blanks:        opts.Blanks,
			CaseSensitive: opts.CaseSensitive,
		}, nil
	case domain.DragAndDrop:
		zones, err := decodeZoneAssignment(correct)
		if err != nil {
			return nil, domain.NewDecodeError("correct", "zone assignment", err)
		}
		return domain.DragAndDropQuestion{
			Correct:       zones,
			Zones:         opts.DropZones,
			CaseSensitive: opts.CaseSensitive,
		}, nil
	case domain.MultipleResponse:
		return domain.MultipleResponseQuestion{
			Correct:       decodeCorrectList(correct),
			CaseSensitive: opts.CaseSensitive,
		}, nil
	default:
		return domain.UnrecognizedQuestion{Tag: qt, Correct: correct}, nil
	}
}

// isObjectEncoded reports whether s looks like a JSON object.
func isObjectEncoded(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "{")
}

// field is one key/value pair of an object-encoded answer.
type field struct {
	key   string
	value string
}

// decodeObject decodes a flat JSON object whose values are scalars.
//
// Fields come back in property order: keys that are canonical array indices
// ("0", "1", "12") first in ascending numeric order, then the remaining keys
// in insertion order. This is the order existing clients serialize blank
// maps in, so {"2":"b","1":"a"} yields a then b. A repeated key keeps its
// first position and its last value.
func decodeObject(s string) ([]field, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var fields []field
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		value, err := scalarString(raw)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		if i, dup := seen[key]; dup {
			fields[i].value = value
			continue
		}
		seen[key] = len(fields)
		fields = append(fields, field{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	slices.SortStableFunc(fields, func(a, b field) int {
		ai, aIndex := arrayIndex(a.key)
		bi, bIndex := arrayIndex(b.key)
		switch {
		case aIndex && bIndex:
			return ai - bi
		case aIndex:
			return -1
		case bIndex:
			return 1
		default:
			return 0
		}
	})
	return fields, nil
}

// arrayIndex reports whether key is a canonical non-negative integer.
func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || key[0] == '+' {
		return 0, false
	}
	return n, true
}

// decodeStringArray decodes a JSON array of scalars.
func decodeStringArray(s string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raws []json.RawMessage
	if err := dec.Decode(&raws); err != nil {
		return nil, err
	}
	if raws == nil {
		return nil, errors.New("expected a JSON array, got null")
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(raws))
	for i, raw := range raws {
		v, err := scalarString(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeCorrectList reads a stored multiple-response answer. It accepts a
// JSON array, a bracketed list without quoting such as "[A, C]", or a legacy
// bare value which becomes a one-element list.
func decodeCorrectList(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return []string{}
	}
	if !strings.HasPrefix(trimmed, "[") {
		return []string{trimmed}
	}
	if list, err := decodeStringArray(trimmed); err == nil {
		return list
	}
	if !strings.HasSuffix(trimmed, "]") {
		return []string{trimmed}
	}

	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), `"'`))
	}
	return out
}

// decodeZoneAssignment decodes a zone assignment. Each zone maps to an array
// of item identifiers; a scalar is a single item and null an empty zone.
func decodeZoneAssignment(s string) (domain.ZoneAssignment, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected a JSON object, got null")
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	zones := make(domain.ZoneAssignment, len(raw))
	for key, value := range raw {
		value = bytes.TrimSpace(value)
		switch {
		case bytes.Equal(value, []byte("null")):
			zones[key] = []string{}
		case len(value) > 0 && value[0] == '[':
			items, err := decodeStringArray(string(value))
			if err != nil {
				return nil, fmt.Errorf("zone %q: %w", key, err)
			}
			zones[key] = items
		default:
			item, err := scalarString(value)
			if err != nil {
				return nil, fmt.Errorf("zone %q: %w", key, err)
			}
			zones[key] = []string{item}
		}
	}
	return zones, nil
}

// scalarString renders a JSON scalar as the string a user would have typed.
func scalarString(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a scalar, got %T", v)
	}
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
