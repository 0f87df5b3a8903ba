// Package application wires the grading engine together: it loads engine
// configuration, lints and imports authored questions, and grades whole test
// runs on top of the validator.
package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/examprep/answerkey/infrastructure/grading"
	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

// EngineConfig defines the complete configuration of an Engine and serves as
// the entry point for operators tuning grading behavior.
type EngineConfig struct {
	// Grading holds the validator tunables such as the numeric tolerance
	// and the unknown-type policy.
	Grading grading.Config `yaml:"grading" json:"grading"`
	// Batch controls how test runs are graded.
	Batch BatchConfig `yaml:"batch" json:"batch"`
	// Logging selects the level and format of diagnostic logs.
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	// Metrics enables Prometheus collection.
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// BatchConfig controls batch grading of a submitted test run.
type BatchConfig struct {
	// Concurrency bounds how many submissions of one run are graded at
	// once.
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"min=1,max=1024"`
	// MaxSubmissions rejects runs larger than this many submissions.
	MaxSubmissions int `yaml:"max_submissions" json:"max_submissions" validate:"min=1,max=100000"`
}

// LoggingConfig selects the slog handler used for diagnostics.
type LoggingConfig struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn warning error"`
	// Format is json or text.
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json text"`
}

// MetricsConfig controls Prometheus collection.
type MetricsConfig struct {
	// Enabled turns on the metrics observer.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace" json:"namespace" validate:"required_if=Enabled true,max=64"`
}

// DefaultEngineConfig returns a configuration that grades exactly like the
// bare validator defaults, logs warnings and above as JSON, and records
// metrics under the answerkey namespace.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Grading: grading.DefaultConfig(),
		Batch: BatchConfig{
			Concurrency:    8,
			MaxSubmissions: 500,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "answerkey",
		},
	}
}

// Validate checks every section of the configuration.
// Validate returns an error wrapping domain.ErrInvalidConfiguration if any
// struct rule fails.
func (c EngineConfig) Validate() error {
	if err := c.Grading.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}

// ParseEngineConfig decodes YAML over DefaultEngineConfig, so a document
// only needs the keys it changes. Decoding is strict: unknown keys are
// rejected so that typos are not silently ignored.
// ParseEngineConfig returns an error if the YAML is malformed, names an
// unknown key, or fails validation.
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return EngineConfig{}, fmt.Errorf("YAML decode failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// LoadEngineConfig reads and parses the configuration file at path.
// LoadEngineConfig returns a *ports.ConfigError wrapping
// ports.ErrConfigNotFound when the file does not exist.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EngineConfig{}, ports.NewConfigError(cleanPath, fmt.Errorf("%w: %w", ports.ErrConfigNotFound, err))
		}
		return EngineConfig{}, ports.NewConfigError(cleanPath, err)
	}

	cfg, err := ParseEngineConfig(data)
	if err != nil {
		return EngineConfig{}, ports.NewConfigError(cleanPath, err)
	}
	return cfg, nil
}
