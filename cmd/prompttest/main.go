package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resume-review/internal/bootstrap"
	"resume-review/internal/extract"
	"resume-review/internal/llm"
	"resume-review/internal/review"
	"resume-review/internal/shared/config"
)

type options struct {
	resumePath string
	jdPath     string
	outPath    string
	provider   string
	model      string
	dryRun     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "prompttest",
		Short:         "Run a resume file through extraction, the review prompt and normalization",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.resumePath, "resume", "", "path to resume file (pdf, docx or txt)")
	cmd.Flags().StringVar(&opts.jdPath, "jd", "", "path to job description file (optional)")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "path to write the normalized JSON (optional)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider: gemini or openai (defaults to LLM_PROVIDER)")
	cmd.Flags().StringVar(&opts.model, "model", "", "LLM model (defaults to LLM_MODEL)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the prompt without calling the LLM")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	if opts.provider != "" {
		viper.Set("LLM_PROVIDER", opts.provider)
	}
	if opts.model != "" {
		viper.Set("LLM_MODEL", opts.model)
	}
	cfg := config.Load()

	resumeText, err := readResume(ctx, opts.resumePath)
	if err != nil {
		return err
	}

	jobDescription := ""
	if strings.TrimSpace(opts.jdPath) != "" {
		jd, err := os.ReadFile(opts.jdPath)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		jobDescription = string(jd)
	}

	req := review.ReviewRequest{Resume: resumeText, JobDescription: jobDescription}
	if err := req.Validate(); err != nil {
		return err
	}

	prompt := llm.BuildReviewPrompt(req.Resume, req.JobDescription)
	if opts.dryRun {
		_, err := fmt.Fprintln(stdout, prompt)
		return err
	}

	raw, err := bootstrap.NewLLM(cfg).Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("llm generate: %w", err)
	}

	result, err := review.ParseLLMResponse(raw)
	if err != nil {
		return err
	}
	if err := review.ValidateResult(result); err != nil {
		return fmt.Errorf("normalized result: %w", err)
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	pretty = append(pretty, '\n')

	if opts.outPath != "" {
		if err := os.WriteFile(opts.outPath, pretty, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, err = stdout.Write(pretty)
	return err
}

func readResume(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	text, err := extract.ExtractTextFromBytes(ctx, data, "", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("extract resume text: %w", err)
	}
	return text, nil
}
