package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/answerkey/internal/application"
	"github.com/examprep/answerkey/internal/domain"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	out, _, err := execute(t, "normalize", "Fill", "blank_2", "and", "[ ]")
	require.NoError(t, err)

	var got struct {
		NormalizedText string `json:"normalized_text"`
		BlankPositions []int  `json:"blank_positions"`
		OriginalFormat string `json:"original_format"`
		BlankCount     int    `json:"blank_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Fill ___ and ___", got.NormalizedText)
	assert.Equal(t, []int{2, 3}, got.BlankPositions)
	assert.Equal(t, "mixed", got.OriginalFormat)
	assert.Equal(t, 2, got.BlankCount)
}

func TestNormalizeCommand_NoText(t *testing.T) {
	_, _, err := execute(t, "normalize")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantCorrect bool
		wantReason  domain.FailureReason
	}{
		{
			name:        "drag and drop zone keys",
			args:        []string{"--type", "drag_and_drop", "--correct", `{"1":["a","b"]}`, "--answer", `{"zone_1":["b","a"]}`},
			wantCorrect: true,
			wantReason:  domain.ReasonNone,
		},
		{
			name:        "acceptable short answer",
			args:        []string{"--type", "short_answer", "--correct", "colour", "--answer", "Color", "--options", `{"acceptable_answers":["color"]}`},
			wantCorrect: true,
			wantReason:  domain.ReasonNone,
		},
		{
			name:        "empty answer",
			args:        []string{"--type", "multiple_choice", "--correct", "A"},
			wantCorrect: false,
			wantReason:  domain.ReasonEmptyAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"validate"}, tt.args...)...)
			require.NoError(t, err)

			var verdict domain.Verdict
			require.NoError(t, json.Unmarshal([]byte(out), &verdict))
			assert.Equal(t, tt.wantCorrect, verdict.Correct)
			assert.Equal(t, tt.wantReason, verdict.Reason)
		})
	}
}

func TestValidateCommand_BadOptions(t *testing.T) {
	_, _, err := execute(t, "validate", "--type", "short_answer", "--correct", "x", "--answer", "x", "--options", "{")
	assert.ErrorContains(t, err, "parse options")
}

func TestGenerateAndGrade(t *testing.T) {
	dir := t.TempDir()
	runPath := filepath.Join(dir, "run.yaml")

	_, _, err := execute(t, "generate", "--size", "21", "--seed", "5", "--output", runPath)
	require.NoError(t, err)

	out, _, err := execute(t, "grade", runPath, "--summary-only")
	require.NoError(t, err)

	var summary application.RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 21, summary.Total)
	assert.Equal(t, summary.Total, summary.Correct+summary.Incorrect)
	assert.Len(t, summary.ByType, len(domain.QuestionTypes()))
}

func TestGradeCommand_WithConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("batch:\n  max_submissions: 1\n"), 0o600))

	runPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(runPath, []byte(`
submissions:
  - question_type: multiple_choice
    user_answer: A
    correct_answer: A
  - question_type: either_or
    user_answer: "True"
    correct_answer: "True"
`), 0o600))

	_, _, err := execute(t, "grade", runPath, "--config", cfgPath)
	assert.ErrorIs(t, err, application.ErrRunTooLarge)
}

func TestLintCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1.0.0"
questions:
  - id: good
    type: select_from_list
    text: "The sky is blank_1."
    correct_answer: '{"1":"blue"}'
    options:
      blanks:
        - blank_id: 1
          answer_choices: [blue, green]
          correct_answer: blue
  - id: bad
    type: select_from_list
    text: "blank_1 and blank_2"
    correct_answer: '{"1":"blue"}'
    options:
      blanks:
        - blank_id: 1
          correct_answer: blue
`), 0o600))

	out, stderr, err := execute(t, "lint", path, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 question(s) failed import")
	assert.Contains(t, stderr, "blank count mismatch")

	var imported []application.ImportedQuestion
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	require.Len(t, imported, 1)
	assert.Equal(t, "good", imported[0].ID)
}
