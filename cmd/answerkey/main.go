package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/examprep/answerkey/infrastructure/blanks"
	"github.com/examprep/answerkey/infrastructure/middleware"
	"github.com/examprep/answerkey/internal/application"
	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/testutils"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "answerkey",
		Short:        "Grade structured answers and normalize blank notation in question text",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "Engine configuration YAML file")
	pf.String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	pf.String("log-format", "", "Log format (json, text); overrides the config file")

	root.AddCommand(normalizeCmd(), lintCmd(), validateCmd(), gradeCmd(), generateCmd())
	return root
}

func normalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Rewrite blank notations in question text to the canonical marker",
		RunE:  runNormalize,
	}
	cmd.Flags().StringP("file", "f", "", "Read the question text from a file (- for stdin)")
	return cmd
}

func lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <questions.yaml>",
		Short: "Import a question set and report blank and option defects",
		Args:  cobra.ExactArgs(1),
		RunE:  runLint,
	}
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Grade a single answer",
		RunE:  runValidate,
	}
	f := cmd.Flags()
	f.StringP("type", "t", "", "Question type, e.g. multiple_choice or drag_and_drop (required)")
	f.String("correct", "", "Stored correct answer (required)")
	f.StringP("answer", "a", "", "Submitted answer")
	f.String("options", "", "Validation options as JSON")
	f.String("id", "", "Question identifier included in the verdict")

	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("correct")
	return cmd
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade <submissions.yaml>",
		Short: "Grade a test run of submissions",
		Args:  cobra.ExactArgs(1),
		RunE:  runGrade,
	}
	cmd.Flags().Bool("summary-only", false, "Print only the run summary")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic test run covering every question type",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.Int("size", 100, "Number of submissions to generate")
	f.Int64("seed", 0, "Random seed (0 = time based)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("ANSWERKEY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// newEngine builds an engine from the config file and flag overrides. Logs
// go to the command's stderr and metrics to a private registry.
func newEngine(cmd *cobra.Command, v *viper.Viper) (*application.Engine, error) {
	cfg := application.DefaultEngineConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := application.LoadEngineConfig(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if level := v.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := v.GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}

	logger, err := middleware.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	engine, err := application.NewEngine(cfg,
		application.WithLogger(logger),
		application.WithRegisterer(prometheus.NewRegistry()),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return engine, nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)

	text := strings.Join(args, " ")
	if path := v.GetString("file"); path != "" {
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}
		text = string(data)
	}
	if text == "" {
		return errors.New("no question text given")
	}

	result := blanks.NormalizeQuestionBlanks(text)
	return writeJSON(cmd.OutOrStdout(), struct {
		domain.NormalizationResult
		Count int `json:"blank_count"`
	}{result, result.BlankCount()})
}

func runLint(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	engine, err := newEngine(cmd, v)
	if err != nil {
		return err
	}

	set, err := application.NewQuestionLoader().LoadFromFile(args[0])
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	imported, importErr := engine.ImportQuestionSet(set)
	if err := writeJSON(cmd.OutOrStdout(), imported); err != nil {
		return err
	}
	if importErr != nil {
		failed := len(set.Questions) - len(imported)
		fmt.Fprintln(cmd.ErrOrStderr(), importErr)
		return fmt.Errorf("%d of %d question(s) failed import", failed, len(set.Questions))
	}
	return nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	engine, err := newEngine(cmd, v)
	if err != nil {
		return err
	}

	var opts domain.ValidationOptions
	if raw := v.GetString("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return fmt.Errorf("parse options: %w", err)
		}
	}

	verdict := engine.Evaluate(cmd.Context(), domain.Submission{
		QuestionID:    v.GetString("id"),
		QuestionType:  domain.QuestionType(v.GetString("type")),
		UserAnswer:    v.GetString("answer"),
		CorrectAnswer: v.GetString("correct"),
		Options:       opts,
	})
	return writeJSON(cmd.OutOrStdout(), verdict)
}

func runGrade(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	engine, err := newEngine(cmd, v)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	subs, err := application.ParseSubmissionRun(data)
	if err != nil {
		return fmt.Errorf("parse submissions: %w", err)
	}

	verdicts, summary, err := engine.GradeRun(cmd.Context(), subs.Submissions)
	if err != nil {
		return err
	}

	if v.GetBool("summary-only") {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	return writeJSON(cmd.OutOrStdout(), struct {
		Verdicts []domain.Verdict       `json:"verdicts"`
		Summary  application.RunSummary `json:"summary"`
	}{verdicts, summary})
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	size := v.GetInt("size")
	if size < 1 {
		return fmt.Errorf("size must be positive, got %d", size)
	}
	seed := v.GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	fixtures := testutils.GenerateRun(testutils.NewRand(seed), size)
	run := application.SubmissionRun{Submissions: make([]domain.Submission, len(fixtures))}
	for i, f := range fixtures {
		run.Submissions[i] = f.Submission
	}

	out, closeOut, err := openOutput(cmd, v.GetString("output"))
	if err != nil {
		return err
	}
	defer closeOut()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("encode submissions: %w", err)
	}
	return enc.Close()
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
