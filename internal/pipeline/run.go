// Package pipeline runs one submission end to end: normalize and extract both texts, score the
// fit, tailor the resume and hand the plan to the rendering gateway.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/fit"
	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/llm"
	"github.com/jonathan/job-application-assistant/internal/observability"
	"github.com/jonathan/job-application-assistant/internal/rendering"
	"github.com/jonathan/job-application-assistant/internal/signals"
	"github.com/jonathan/job-application-assistant/internal/tailoring"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// Progress steps
const (
	StepIngest = "ingest"
	StepAssess = "assess"
	StepTailor = "tailor"
	StepRender = "render"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds the inputs of one run
type RunOptions struct {
	ResumeText string
	JobText    string
	OnProgress ProgressCallback
}

// Analysis is the assessment half of a run.
type Analysis struct {
	Job        types.JobDescription `json:"job"`
	Resume     types.ResumeDocument `json:"resume"`
	JobSignals types.SignalSet      `json:"-"`
	Assessment types.FitAssessment  `json:"assessment"`
}

// Result is everything a run produced. It is shared by cache readers and must not be modified.
type Result struct {
	RunID      uuid.UUID            `json:"run_id"`
	Job        types.JobDescription `json:"job"`
	Source     types.ResumeDocument `json:"resume"`
	Assessment types.FitAssessment  `json:"assessment"`
	Plan       types.TailoringPlan  `json:"plan"`
	// Fallback is set when AI tailoring was selected but the heuristic plan was used.
	Fallback bool `json:"fallback"`
}

// Engine holds the read-only parts shared by all runs: configuration, vocabulary, scorer and
// tailoring strategy. Runs share no mutable state.
type Engine struct {
	cfg      *config.Config
	matcher  *signals.Matcher
	scorer   *fit.Scorer
	tailor   tailoring.Tailor
	strategy types.Strategy
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewEngine builds the engine. A nil generator selects heuristic tailoring. metrics may be nil.
func NewEngine(cfg *config.Config, gen llm.Generator, metrics *observability.Metrics, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, &config.ConfigurationError{Field: "config", Message: "configuration is required"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	vocab := config.DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		v, err := config.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "vocabulary_path", Message: "cannot load vocabulary", Cause: err}
		}
		vocab = v
	}
	m := signals.NewMatcher(vocab)

	strategy := types.StrategyHeuristic
	if gen != nil {
		strategy = types.StrategyAI
	}
	return &Engine{
		cfg:      cfg,
		matcher:  m,
		scorer:   fit.NewScorer(cfg.Scoring, m),
		tailor:   tailoring.Select(gen, m, tailoring.OptionsFromConfig(cfg), logger),
		strategy: strategy,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Strategy returns the strategy selected for this engine's runs.
func (e *Engine) Strategy() types.Strategy {
	return e.strategy
}

// Matcher returns the vocabulary matcher.
func (e *Engine) Matcher() *signals.Matcher {
	return e.matcher
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, rc *RunContext, step, message string, content any) {
	rc.Logger.Debug(message, zap.String("step", step))
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, RunID: rc.ID.String(), Content: content})
	}
}

// Assess normalizes both texts in parallel, extracts their signals and scores the fit.
// Empty or unparseable text becomes a note on the assessment, never an error.
func (e *Engine) Assess(ctx context.Context, rc *RunContext, opts RunOptions) (*Analysis, error) {
	var (
		resume        types.ResumeDocument
		resumeSignals types.SignalSet
		resumeErr     error
		job           types.JobDescription
		jobSignals    types.SignalSet
		jobErr        error
	)

	vocab := e.matcher.Vocabulary()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resume, resumeErr = ingestion.ParseResume(opts.ResumeText)
		resumeSignals = signals.ExtractText(opts.ResumeText, e.matcher, signals.Options{})
		return gctx.Err()
	})
	g.Go(func() error {
		text := ingestion.CleanText(opts.JobText)
		if text == "" {
			jobErr = &ingestion.InputError{Source: "job", Message: "job description is empty"}
		}
		job = types.JobDescription{
			Text:         text,
			RoleTitle:    signals.InferRoleTitle(text, vocab.RoleNouns),
			Requirements: signals.ExtractRequirements(text, e.matcher),
		}
		jobSignals = signals.ExtractText(text, e.matcher, signals.Options{TopFrequent: vocab.TopFrequent})
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	emitProgress(&opts, rc, StepIngest,
		fmt.Sprintf("Parsed resume (%d sections) and job (%d requirements)", len(resume.Sections), job.Requirements.Len()), nil)

	assessment := e.scorer.Assess(resumeSignals, job.Requirements)
	for _, err := range []error{resumeErr, jobErr} {
		var inputErr *ingestion.InputError
		if errors.As(err, &inputErr) {
			rc.Logger.Warn("input problem", zap.String("source", inputErr.Source), zap.String("message", inputErr.Message))
			assessment = assessment.WithNote("Input problem: " + inputErr.Error())
		} else if err != nil {
			return nil, err
		}
	}
	emitProgress(&opts, rc, StepAssess,
		fmt.Sprintf("Fit score %.2f (%s)", assessment.Score, assessment.Recommendation), assessment)

	return &Analysis{
		Job:        job,
		Resume:     resume,
		JobSignals: jobSignals,
		Assessment: assessment,
	}, nil
}

// Run performs a full run: assessment then tailoring. For any text input it returns both an
// assessment and a plan; AI problems only show up as plan notes.
func (e *Engine) Run(ctx context.Context, rc *RunContext, opts RunOptions) (*Result, error) {
	analysis, err := e.Assess(ctx, rc, opts)
	if err != nil {
		return nil, err
	}

	plan, err := e.tailor.Tailor(ctx, tailoring.Input{
		Resume:     analysis.Resume.Clone(),
		Assessment: analysis.Assessment,
		Job:        analysis.JobSignals,
		RoleTitle:  analysis.Job.RoleTitle,
		JobText:    analysis.Job.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("tailoring failed: %w", err)
	}

	fallback := e.strategy == types.StrategyAI && plan.Strategy != types.StrategyAI
	if fallback {
		rc.Logger.Warn("AI tailoring fell back to heuristic", zap.Strings("notes", plan.Notes))
	}
	emitProgress(&opts, rc, StepTailor,
		fmt.Sprintf("Tailored %d bullets in %d sections (%s)", plan.BulletCount(), len(plan.Sections), plan.Strategy), nil)

	e.metrics.RecordRun(string(plan.Strategy), string(analysis.Assessment.Recommendation), analysis.Assessment.Score, fallback, time.Since(rc.Started))
	rc.Logger.Info("run complete",
		zap.Float64("score", analysis.Assessment.Score),
		zap.String("recommendation", string(analysis.Assessment.Recommendation)),
		zap.String("strategy", string(plan.Strategy)),
		zap.Duration("elapsed", time.Since(rc.Started)),
	)

	return &Result{
		RunID:      rc.ID,
		Job:        analysis.Job,
		Source:     analysis.Resume,
		Assessment: analysis.Assessment,
		Plan:       plan,
		Fallback:   fallback,
	}, nil
}

// Render hands a result to the rendering gateway. The result itself is not modified.
func (e *Engine) Render(ctx context.Context, rc *RunContext, res *Result, gw rendering.Gateway, onProgress ProgressCallback) (*rendering.Artifacts, error) {
	artifacts, err := gw.Render(ctx, rendering.Request{
		Label:     rc.Label,
		Stamp:     rc.Started,
		OutputDir: rc.OutputDir,
		Resume:    res.Source,
		Plan:      res.Plan.Clone(),
		RoleTitle: res.Job.RoleTitle,
		MaxPages:  rc.MaxPages,
		Overlap:   tailoring.NewOverlap(res.Assessment.Matched, e.matcher),
	})
	if err != nil {
		return nil, err
	}
	opts := RunOptions{OnProgress: onProgress}
	emitProgress(&opts, rc, StepRender, "Wrote "+strings.Join(artifacts.Paths(), ", "), artifacts)
	return artifacts, nil
}

// CacheKey identifies a run's inputs for the result cache.
func (e *Engine) CacheKey(opts RunOptions) string {
	return ingestion.Fingerprint(opts.JobText, opts.ResumeText, string(e.strategy))
}
