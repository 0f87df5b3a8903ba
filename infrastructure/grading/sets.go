package grading

import (
	"slices"
	"strings"

	"github.com/examprep/answerkey/internal/domain"
)

// compareDragAndDrop grades zone assignments. Zones are compared over the
// union of zone keys from both sides; a zone missing on one side is empty.
func compareDragAndDrop(q domain.DragAndDropQuestion, user string) outcome {
	const comparator = string(domain.DragAndDrop)

	submitted, err := decodeZoneAssignment(user)
	if err != nil {
		out := fail(comparator, domain.StageDecode, domain.ReasonMalformedAnswer)
		out.err = domain.NewDecodeError("user", "zone assignment", err)
		out.input = user
		return out
	}

	got := normalizeZones(submitted)
	want := normalizeZones(q.Correct)

	keys := make([]string, 0, len(got)+len(want))
	for k := range got {
		keys = append(keys, k)
	}
	for k := range want {
		if _, ok := got[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		if !sameMembers(got[k], want[k], q.CaseSensitive) {
			out := fail(comparator, domain.StageZonePrefix+k, domain.ReasonMismatch)
			out.message = "zone " + k + " holds different items"
			return out
		}
	}
	return pass(comparator, domain.StageSet)
}

// normalizeZones rekeys an assignment by normalized zone key. Raw keys that
// normalize to the same zone have their items merged.
func normalizeZones(zones domain.ZoneAssignment) map[string][]string {
	out := make(map[string][]string, len(zones))
	for key, items := range zones {
		k := NormalizeZoneKey(key)
		out[k] = append(out[k], items...)
	}
	return out
}

// NormalizeZoneKey maps the zone key spellings in use ("1", "zone_1",
// "Zone-1") to one form, the bare identifier.
func NormalizeZoneKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, prefix := range []string{"zone_", "zone-", "zone "} {
		if len(k) > len(prefix) && strings.HasPrefix(k, prefix) {
			return strings.TrimSpace(k[len(prefix):])
		}
	}
	return k
}

// compareMultipleResponse grades multi-select answers as unordered lists
// with exact counts. Case is ignored unless both the validator and the
// question ask for it.
func (v *Validator) compareMultipleResponse(q domain.MultipleResponseQuestion, user string) outcome {
	const comparator = string(domain.MultipleResponse)

	selected, err := decodeStringArray(strings.TrimSpace(user))
	if err != nil {
		out := fail(comparator, domain.StageDecode, domain.ReasonMalformedAnswer)
		out.err = domain.NewDecodeError("user", "selection list", err)
		out.input = user
		return out
	}

	caseSensitive := v.config.MultipleResponseCaseSensitive && q.CaseSensitive
	if sameMembers(selected, q.Correct, caseSensitive) {
		return pass(comparator, domain.StageSet)
	}
	return fail(comparator, domain.StageSet, domain.ReasonMismatch)
}
