package testutils

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/examprep/answerkey/internal/domain"
)

// SubmissionFixture is a submission paired with the verdict it must receive.
type SubmissionFixture struct {
	Name        string
	Submission  domain.Submission
	WantCorrect bool
}

// SubmissionTemplate generates submissions of one question type.
type SubmissionTemplate struct {
	// Type is the question type the template produces.
	Type domain.QuestionType

	// Generate builds a question with a correct submission.
	Generate func(rng *rand.Rand) domain.Submission

	// Corrupt turns a correct submission into an incorrect one.
	Corrupt func(rng *rand.Rand, sub domain.Submission) domain.Submission
}

var letters = []string{"A", "B", "C", "D", "E"}

// SubmissionTemplates covers every known question type.
var SubmissionTemplates = []SubmissionTemplate{
	{
		Type: domain.MultipleChoice,
		Generate: func(rng *rand.Rand) domain.Submission {
			answer := letters[rng.Intn(len(letters))]
			return domain.Submission{
				QuestionType:  domain.MultipleChoice,
				CorrectAnswer: answer,
				UserAnswer:    randomCase(rng, answer),
			}
		},
		Corrupt: func(rng *rand.Rand, sub domain.Submission) domain.Submission {
			sub.UserAnswer = otherLetter(rng, sub.CorrectAnswer)
			return sub
		},
	},
	{
		Type: domain.EitherOr,
		Generate: func(rng *rand.Rand) domain.Submission {
			answer := []string{"True", "False"}[rng.Intn(2)]
			return domain.Submission{
				QuestionType:  domain.EitherOr,
				CorrectAnswer: answer,
				UserAnswer:    " " + randomCase(rng, answer) + " ",
			}
		},
		Corrupt: func(_ *rand.Rand, sub domain.Submission) domain.Submission {
			if sub.CorrectAnswer == "True" {
				sub.UserAnswer = "False"
			} else {
				sub.UserAnswer = "True"
			}
			return sub
		},
	},
	{
		Type: domain.NumericalEntry,
		Generate: func(rng *rand.Rand) domain.Submission {
			value := rng.Intn(1000)
			return domain.Submission{
				QuestionType:  domain.NumericalEntry,
				CorrectAnswer: strconv.Itoa(value),
				UserAnswer:    strconv.FormatFloat(float64(value)+0.00001, 'f', 5, 64),
			}
		},
		Corrupt: func(rng *rand.Rand, sub domain.Submission) domain.Submission {
			value, _ := strconv.Atoi(sub.CorrectAnswer)
			sub.UserAnswer = strconv.Itoa(value + 1 + rng.Intn(9))
			return sub
		},
	},
	{
		Type: domain.ShortAnswer,
		Generate: func(rng *rand.Rand) domain.Submission {
			city := capitals[rng.Intn(len(capitals))]
			return domain.Submission{
				QuestionType:  domain.ShortAnswer,
				CorrectAnswer: city,
				UserAnswer:    randomCase(rng, city),
				Options: domain.ValidationOptions{
					AcceptableAnswers: []string{"The city of " + city},
				},
			}
		},
		Corrupt: func(_ *rand.Rand, sub domain.Submission) domain.Submission {
			sub.UserAnswer = sub.CorrectAnswer + "ville"
			return sub
		},
	},
	{
		Type: domain.SelectFromList,
		Generate: func(rng *rand.Rand) domain.Submission {
			n := 1 + rng.Intn(3)
			blanks := make([]domain.BlankDescriptor, n)
			answer := make(map[string]string, n)
			for i := range blanks {
				correct := letters[rng.Intn(len(letters))]
				blanks[i] = domain.BlankDescriptor{
					BlankID:       i + 1,
					AnswerChoices: letters,
					CorrectAnswer: correct,
				}
				answer[strconv.Itoa(i+1)] = correct
			}
			return domain.Submission{
				QuestionType: domain.SelectFromList,
				UserAnswer:   mustJSON(answer),
				Options:      domain.ValidationOptions{Blanks: blanks},
			}
		},
		Corrupt: func(rng *rand.Rand, sub domain.Submission) domain.Submission {
			answer := make(map[string]string, len(sub.Options.Blanks))
			for _, b := range sub.Options.Blanks {
				answer[strconv.Itoa(b.BlankID)] = b.CorrectAnswer
			}
			last := sub.Options.Blanks[len(sub.Options.Blanks)-1]
			answer[strconv.Itoa(last.BlankID)] = otherLetter(rng, last.CorrectAnswer)
			sub.UserAnswer = mustJSON(answer)
			return sub
		},
	},
	{
		Type: domain.DragAndDrop,
		Generate: func(rng *rand.Rand) domain.Submission {
			correct := map[string][]string{
				"zone_1": {"item_a", "item_b"},
				"zone_2": {"item_c"},
			}
			user := map[string][]string{
				"1": shuffled(rng, correct["zone_1"]),
				"2": correct["zone_2"],
			}
			return domain.Submission{
				QuestionType:  domain.DragAndDrop,
				CorrectAnswer: mustJSON(correct),
				UserAnswer:    mustJSON(user),
				Options: domain.ValidationOptions{
					DropZones: []domain.DropZoneDescriptor{
						{ZoneID: 1, Label: "Mammals"},
						{ZoneID: 2, Label: "Birds"},
					},
				},
			}
		},
		Corrupt: func(_ *rand.Rand, sub domain.Submission) domain.Submission {
			sub.UserAnswer = mustJSON(map[string][]string{
				"1": {"item_a"},
				"2": {"item_b", "item_c"},
			})
			return sub
		},
	},
	{
		Type: domain.MultipleResponse,
		Generate: func(rng *rand.Rand) domain.Submission {
			correct := []string{"Option A", "Option C", "Option D"}
			return domain.Submission{
				QuestionType:  domain.MultipleResponse,
				CorrectAnswer: mustJSON(correct),
				UserAnswer:    mustJSON(shuffled(rng, correct)),
			}
		},
		Corrupt: func(_ *rand.Rand, sub domain.Submission) domain.Submission {
			sub.UserAnswer = mustJSON([]string{"Option A", "Option C"})
			return sub
		},
	},
}

var capitals = []string{"Paris", "Berlin", "Madrid", "Lisbon", "Vienna", "Oslo"}

// GenerateRun builds n submissions cycling through every template. Roughly
// half of them are corrupted; WantCorrect records which.
func GenerateRun(rng *rand.Rand, n int) []SubmissionFixture {
	out := make([]SubmissionFixture, 0, n)
	for i := 0; i < n; i++ {
		tmpl := SubmissionTemplates[i%len(SubmissionTemplates)]
		sub := tmpl.Generate(rng)
		want := true
		if rng.Intn(2) == 0 {
			sub = tmpl.Corrupt(rng, sub)
			want = false
		}
		sub.QuestionID = fmt.Sprintf("q-%04d", i+1)
		out = append(out, SubmissionFixture{
			Name:        fmt.Sprintf("%s/%d", tmpl.Type, i+1),
			Submission:  sub,
			WantCorrect: want,
		})
	}
	return out
}

func randomCase(rng *rand.Rand, s string) string {
	b := []byte(s)
	for i, c := range b {
		if rng.Intn(2) == 0 {
			continue
		}
		switch {
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

func otherLetter(rng *rand.Rand, not string) string {
	for {
		l := letters[rng.Intn(len(letters))]
		if l != not {
			return l
		}
	}
}

func shuffled(rng *rand.Rand, items []string) []string {
	out := append([]string(nil), items...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal fixture: %v", err))
	}
	return string(b)
}

// NewRand returns a deterministic source for reproducible fixtures.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
