package application

import (
	"strings"
	"testing"
)

// FuzzQuestionLoader_ParseYAML feeds arbitrary documents to the loader and
// importer. Neither may panic, and every accepted set is hashed and cached.
func FuzzQuestionLoader_ParseYAML(f *testing.F) {
	testcases := []string{
		sampleSet,

		// Invalid YAML syntax.
		`version: "1.0.0
questions:
  - id: q1`,

		// Missing required fields.
		`questions: []`,

		// Invalid structure.
		`version: 1
questions: "should be array"`,

		// Unicode and special characters.
		`version: "1.0.0"
name: "测试 🚀 тест"
questions:
  - type: short_answer
    text: "blank_1\t[ ] *x* ______"
    correct_answer: '{"1":"a"}'`,

		// Large numbers and negative ids.
		`version: "999999999.0.0"
questions:
  - type: select_from_list
    text: "blank_99999999999999999999"
    correct_answer: x
    options:
      blanks:
        - blank_id: -1
          correct_answer: x`,
	}
	for _, tc := range testcases {
		f.Add(tc)
	}

	f.Fuzz(func(t *testing.T, doc string) {
		loader := NewQuestionLoader()
		set, err := loader.LoadFromReader(strings.NewReader(doc))
		if err != nil {
			return
		}

		if _, err := questionSetHash(set); err != nil {
			t.Fatalf("hash accepted set: %v", err)
		}
		if loader.CacheSize() != 1 {
			t.Fatalf("accepted set not cached, cache size %d", loader.CacheSize())
		}

		e := newTestEngine(t, nil)
		_, _ = e.ImportQuestionSet(set)
	})
}
