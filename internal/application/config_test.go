package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

// TestParseEngineConfig verifies that documents are decoded over the
// defaults and that invalid or misspelled settings are rejected.
func TestParseEngineConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		verify  func(t *testing.T, cfg EngineConfig)
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			verify: func(t *testing.T, cfg EngineConfig) {
				assert.Equal(t, DefaultEngineConfig(), cfg)
			},
		},
		{
			name: "partial override",
			yaml: `
grading:
  numeric_tolerance: 0.01
  strict_unknown_types: true
batch:
  concurrency: 2
logging:
  level: debug
  format: text
`,
			verify: func(t *testing.T, cfg EngineConfig) {
				assert.InDelta(t, 0.01, cfg.Grading.NumericTolerance, 1e-12)
				assert.True(t, cfg.Grading.StrictUnknownTypes)
				assert.Equal(t, ", ", cfg.Grading.MultiBlankSeparator)
				assert.Equal(t, 2, cfg.Batch.Concurrency)
				assert.Equal(t, 500, cfg.Batch.MaxSubmissions)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.True(t, cfg.Metrics.Enabled)
			},
		},
		{
			name: "metrics disabled without namespace",
			yaml: `
metrics:
  enabled: false
  namespace: ""
`,
			verify: func(t *testing.T, cfg EngineConfig) {
				assert.False(t, cfg.Metrics.Enabled)
			},
		},
		{
			name: "unknown key rejected",
			yaml: `
grading:
  numeric_tolerence: 0.01
`,
			wantErr: assert.AnError,
		},
		{
			name:    "malformed yaml",
			yaml:    "grading: [",
			wantErr: assert.AnError,
		},
		{
			name: "tolerance out of range",
			yaml: `
grading:
  numeric_tolerance: 2
`,
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "zero concurrency",
			yaml: `
batch:
  concurrency: 0
`,
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "unknown log level",
			yaml: `
logging:
  level: verbose
`,
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "metrics enabled without namespace",
			yaml: `
metrics:
  enabled: true
  namespace: ""
`,
			wantErr: domain.ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseEngineConfig([]byte(tt.yaml))
			if tt.wantErr != nil {
				require.Error(t, err)
				if tt.wantErr != assert.AnError {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestDefaultEngineConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultEngineConfig().Validate())
}

func TestLoadEngineConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadEngineConfig(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ports.ErrConfigNotFound)

		var cfgErr *ports.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "engine.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch:\n  max_submissions: 10\n"), 0o600))

		cfg, err := LoadEngineConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Batch.MaxSubmissions)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch:\n  max_submissions: -1\n"), 0o600))

		_, err := LoadEngineConfig(path)
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		assert.NotErrorIs(t, err, ports.ErrConfigNotFound)
	})
}
