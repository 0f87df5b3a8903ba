package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdict_JSON(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    string
	}{
		{
			name: "negative verdict with stage",
			verdict: Verdict{
				QuestionID:   "q-7",
				QuestionType: DragAndDrop,
				Comparator:   "drag_and_drop",
				Stage:        StageZonePrefix + "2",
				Reason:       ReasonMismatch,
			},
			want: `{"question_id":"q-7","question_type":"drag_and_drop","correct":false,"comparator":"drag_and_drop","stage":"zone:2","reason":"mismatch"}`,
		},
		{
			name: "anonymous positive verdict",
			verdict: Verdict{
				QuestionType: MultipleChoice,
				Correct:      true,
				Comparator:   "multiple_choice",
				Reason:       ReasonNone,
			},
			want: `{"question_type":"multiple_choice","correct":true,"comparator":"multiple_choice","reason":"none"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.verdict)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}
