package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/fetch"
	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/llm"
	"github.com/jonathan/job-application-assistant/internal/observability"
	"github.com/jonathan/job-application-assistant/internal/pipeline"
)

// jobFlags are the input flags shared by assess and tailor.
type jobFlags struct {
	jobFile string
	jobURL  string
	resume  string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.jobFile, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	cmd.Flags().StringVar(&f.jobURL, "job-url", "", "URL to fetch the job description from (mutually exclusive with --job)")
	cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "Path to resume .txt or .pdf (defaults to RESUME_TXT)")
}

// loadConfig loads the file and environment configuration, then applies command-line flags.
// Flag values are validated with the rest of the configuration.
func loadConfig(apply func(cfg *config.Config)) (*config.Config, error) {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if apply != nil {
		apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setup builds the logger and engine for one command invocation.
func setup(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*pipeline.Engine, *zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	gen, err := llm.NewGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	engine, err := pipeline.NewEngine(cfg, gen, metrics, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("engine ready", zap.String("strategy", string(engine.Strategy())))
	return engine, logger, nil
}

// readInputs returns the job and resume text named by the flags.
func readInputs(ctx context.Context, f *jobFlags, cfg *config.Config) (jobText, resumeText string, err error) {
	if f.jobFile == "" && f.jobURL == "" {
		return "", "", fmt.Errorf("either --job or --job-url must be provided")
	}
	if f.jobFile != "" && f.jobURL != "" {
		return "", "", fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}

	resumePath := f.resume
	if resumePath == "" {
		resumePath = cfg.Output.Resume
	}
	if resumePath == "" {
		return "", "", fmt.Errorf("--resume must be provided (or set %s)", config.EnvResume)
	}

	if f.jobFile != "" {
		jobText, err = ingestion.IngestFromFile(f.jobFile)
	} else {
		jobText, err = ingestion.IngestFromURL(ctx, f.jobURL, fetch.DefaultJobPostingOptions())
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read job description: %w", err)
	}

	resumeText, err = ingestion.ReadResumeFile(resumePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read resume: %w", err)
	}
	return jobText, resumeText, nil
}
