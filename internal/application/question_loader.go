package application

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/examprep/answerkey/internal/domain"
)

// QuestionSet is a versioned file of authored questions, the unit handed to
// question import.
type QuestionSet struct {
	// Version is the semantic version of the set, e.g. "1.0.0".
	Version string `yaml:"version" json:"version" validate:"required,semver"`
	// Name is a human-readable label for the set.
	Name string `yaml:"name,omitempty" json:"name,omitempty" validate:"omitempty,max=256"`
	// Questions holds the drafts in authoring order.
	Questions []QuestionDraft `yaml:"questions" json:"questions" validate:"required,min=1,dive"`
}

// SubmissionRun is a file of submissions graded together as one test run.
type SubmissionRun struct {
	Submissions []domain.Submission `yaml:"submissions" json:"submissions" validate:"required,min=1"`
}

// QuestionLoader provides YAML parsing, validation and caching of question
// sets.
// Use QuestionLoader to load sets from files or readers while benefiting
// from SHA256-based caching of identical documents.
type QuestionLoader struct {
	// cache stores validated sets indexed by SHA256 hash of the normalized
	// document.
	// WARNING: Cached sets MUST NOT be mutated.
	cache map[string]*QuestionSet // SHA256 hash -> validated set
	// cacheMu guards cache.
	cacheMu sync.RWMutex
	// sf prevents duplicate validation when multiple goroutines load the
	// same document simultaneously.
	sf singleflight.Group
}

// NewQuestionLoader creates a loader with an empty cache.
func NewQuestionLoader() *QuestionLoader {
	return &QuestionLoader{
		cache: make(map[string]*QuestionSet),
	}
}

// load parses data, then validates it at most once per distinct document.
// WARNING: The returned set is a pointer to a cached instance. Callers MUST
// NOT mutate it.
func (ql *QuestionLoader) load(data []byte) (*QuestionSet, error) {
	set, err := parseQuestionSet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized set, not the raw bytes, so formatting changes do
	// not defeat the cache.
	hash, err := questionSetHash(set)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := ql.sf.Do(hash, func() (any, error) {
		if cached, ok := ql.getCachedSet(hash); ok {
			return cached, nil
		}

		if err := validateQuestionSet(set); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		ql.cacheSet(hash, set)
		return set, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*QuestionSet), nil
}

// LoadFromFile loads and validates a question set from a YAML file.
// WARNING: The returned set is a pointer to a cached instance. Callers MUST
// NOT mutate it.
// LoadFromFile returns an error if reading, parsing or validation fails.
func (ql *QuestionLoader) LoadFromFile(path string) (*QuestionSet, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ql.load(data)
}

// LoadFromReader loads and validates a question set from r.
// WARNING: The returned set is a pointer to a cached instance. Callers MUST
// NOT mutate it.
// LoadFromReader returns an error if reading, parsing or validation fails.
func (ql *QuestionLoader) LoadFromReader(r io.Reader) (*QuestionSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return ql.load(data)
}

// ClearCache removes all cached sets, forcing subsequent loads to validate
// from source.
func (ql *QuestionLoader) ClearCache() {
	ql.cacheMu.Lock()
	defer ql.cacheMu.Unlock()

	ql.cache = make(map[string]*QuestionSet)
}

// CacheSize returns the number of cached sets.
func (ql *QuestionLoader) CacheSize() int {
	ql.cacheMu.RLock()
	defer ql.cacheMu.RUnlock()

	return len(ql.cache)
}

func (ql *QuestionLoader) getCachedSet(hash string) (*QuestionSet, bool) {
	ql.cacheMu.RLock()
	defer ql.cacheMu.RUnlock()

	set, ok := ql.cache[hash]
	return set, ok
}

func (ql *QuestionLoader) cacheSet(hash string, set *QuestionSet) {
	ql.cacheMu.Lock()
	defer ql.cacheMu.Unlock()

	ql.cache[hash] = set
}

// parseQuestionSet decodes strictly so that misspelled keys are reported
// instead of silently dropped.
func parseQuestionSet(data []byte) (*QuestionSet, error) {
	var set QuestionSet
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&set); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &set, nil
}

// validateQuestionSet runs struct validation and the checks that span
// questions. Per-question option linting is left to import so that one bad
// question does not reject the whole set.
func validateQuestionSet(set *QuestionSet) error {
	if err := validate.Struct(set); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	seen := make(map[string]int, len(set.Questions))
	for i, q := range set.Questions {
		if q.ID == "" {
			continue
		}
		if prev, ok := seen[q.ID]; ok {
			return fmt.Errorf("%w: duplicate question id %q at positions %d and %d",
				domain.ErrInvalidConfiguration, q.ID, prev+1, i+1)
		}
		seen[q.ID] = i
	}
	return nil
}

func questionSetHash(set *QuestionSet) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2) // Use consistent 2-space indentation.

	if err := encoder.Encode(set); err != nil {
		return "", fmt.Errorf("failed to encode question set for hashing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode question set for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

// ParseSubmissionRun decodes a YAML or JSON document of submissions.
// ParseSubmissionRun returns an error if the document is malformed, names an
// unknown key, or holds no submissions.
func ParseSubmissionRun(data []byte) (*SubmissionRun, error) {
	var run SubmissionRun
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&run); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty submission document", domain.ErrInvalidConfiguration)
		}
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	if err := validate.Struct(run); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return &run, nil
}
