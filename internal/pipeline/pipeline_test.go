package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/fit"
	"github.com/jonathan/job-application-assistant/internal/llm"
	"github.com/jonathan/job-application-assistant/internal/observability"
	"github.com/jonathan/job-application-assistant/internal/rendering"
	"github.com/jonathan/job-application-assistant/internal/tailoring"
	"github.com/jonathan/job-application-assistant/internal/types"
)

const sampleResume = `Jane Doe
jane@example.com

Experience
----------
- Built REST APIs in Go
- Led a team of 4
`

const sampleJob = `Senior Go Engineer

Requirements:
- Must have strong Go experience
- Kubernetes is required

Nice to have:
- Leadership of small teams`

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, llm.Constraints) (string, error) {
	return "", errors.New("connection refused")
}

func newEngine(t *testing.T, gen llm.Generator, metrics *observability.Metrics) *Engine {
	t.Helper()
	cfg := config.Default()
	e, err := NewEngine(&cfg, gen, metrics, nil)
	require.NoError(t, err)
	return e
}

func newRunContext(t *testing.T) *RunContext {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	return NewRunContext(&cfg, "Acme", nil)
}

func TestNewRunContext(t *testing.T) {
	cfg := config.Default()
	rc := NewRunContext(&cfg, "Acme", nil)

	assert.NotEqual(t, uuid.Nil, rc.ID)
	assert.Equal(t, "Acme", rc.Label)
	assert.Equal(t, config.DefaultOutputDir, rc.OutputDir)
	assert.Equal(t, config.DefaultMaxPages, rc.MaxPages)
	assert.Empty(t, rc.Model)
	assert.NotNil(t, rc.Logger)

	other := NewRunContext(&cfg, "Acme", nil)
	assert.NotEqual(t, rc.ID, other.ID)
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := NewEngine(nil, nil, nil, nil)
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	cfg := config.Default()
	cfg.VocabularyPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewEngine(&cfg, nil, nil, nil)
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "vocabulary_path", cfgErr.Field)
}

func TestRun_HeuristicExample(t *testing.T) {
	metrics := observability.NewMetrics()
	e := newEngine(t, nil, metrics)
	assert.Equal(t, types.StrategyHeuristic, e.Strategy())

	var steps []string
	res, err := e.Run(context.Background(), newRunContext(t), RunOptions{
		ResumeText: sampleResume,
		JobText:    sampleJob,
		OnProgress: func(ev ProgressEvent) { steps = append(steps, ev.Step) },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "leadership"}, res.Assessment.Matched)
	assert.Equal(t, []string{"kubernetes"}, res.Assessment.Missing)
	assert.InDelta(t, 0.6, res.Assessment.Score, 1e-9)
	assert.Equal(t, types.RecommendMaybe, res.Assessment.Recommendation)
	assert.Equal(t, "Senior Go Engineer", res.Job.RoleTitle)

	assert.Equal(t, types.StrategyHeuristic, res.Plan.Strategy)
	assert.False(t, res.Fallback)
	require.Len(t, res.Plan.Sections, 1)
	assert.Equal(t, "Experience", res.Plan.Sections[0].Name)
	assert.ElementsMatch(t, []string{"Built REST APIs in Go", "Led a team of 4"}, res.Plan.Sections[0].Bullets)
	assert.NotEmpty(t, res.Plan.CoverLetter)

	assert.Equal(t, []string{StepIngest, StepAssess, StepTailor}, steps)
	count, err := testutil.GatherAndCount(metrics.Registry(), "job_assistant_pipeline_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_EmptyJobIsDegenerate(t *testing.T) {
	e := newEngine(t, nil, nil)

	res, err := e.Run(context.Background(), newRunContext(t), RunOptions{ResumeText: sampleResume, JobText: "  \n "})
	require.NoError(t, err)

	assert.Equal(t, fit.DegenerateScore, res.Assessment.Score)
	assert.Equal(t, types.RecommendMaybe, res.Assessment.Recommendation)
	assert.Contains(t, res.Assessment.Notes, fit.NoteUnparsedRequirements)
	assert.Contains(t, strings.Join(res.Assessment.Notes, "\n"), "Input problem: job: job description is empty")
	assert.NotEmpty(t, res.Plan.Sections)
}

func TestRun_EmptyResumeStillAssesses(t *testing.T) {
	e := newEngine(t, nil, nil)

	res, err := e.Run(context.Background(), newRunContext(t), RunOptions{JobText: sampleJob})
	require.NoError(t, err)

	assert.Empty(t, res.Assessment.Matched)
	assert.Equal(t, []string{"go", "kubernetes", "leadership"}, res.Assessment.Missing)
	assert.Equal(t, types.RecommendNo, res.Assessment.Recommendation)
	assert.Contains(t, strings.Join(res.Assessment.Notes, "\n"), "Input problem: resume")
	assert.Empty(t, res.Plan.Sections)
}

func TestRun_AIFailureFallsBack(t *testing.T) {
	metrics := observability.NewMetrics()
	aiEngine := newEngine(t, failingGenerator{}, metrics)
	assert.Equal(t, types.StrategyAI, aiEngine.Strategy())

	res, err := aiEngine.Run(context.Background(), newRunContext(t), RunOptions{ResumeText: sampleResume, JobText: sampleJob})
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, types.StrategyHeuristic, res.Plan.Strategy)
	assert.Contains(t, strings.Join(res.Plan.Notes, "\n"), tailoring.FallbackNotePrefix)
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(`
# HELP job_assistant_tailoring_ai_fallbacks_total Runs where AI tailoring failed and the heuristic plan was used.
# TYPE job_assistant_tailoring_ai_fallbacks_total counter
job_assistant_tailoring_ai_fallbacks_total 1
`), "job_assistant_tailoring_ai_fallbacks_total"))

	// Same shape as a heuristic run
	plain, err := newEngine(t, nil, nil).Run(context.Background(), newRunContext(t), RunOptions{ResumeText: sampleResume, JobText: sampleJob})
	require.NoError(t, err)
	assert.Equal(t, plain.Assessment, res.Assessment)
	assert.Equal(t, plain.Plan.Sections, res.Plan.Sections)
	assert.Equal(t, plain.Plan.CoverLetter, res.Plan.CoverLetter)
}

func TestCacheKey(t *testing.T) {
	e := newEngine(t, nil, nil)
	a := e.CacheKey(RunOptions{ResumeText: sampleResume, JobText: sampleJob})
	b := e.CacheKey(RunOptions{ResumeText: sampleResume + "\n\n", JobText: sampleJob})
	c := e.CacheKey(RunOptions{ResumeText: sampleResume, JobText: sampleJob + " Docker"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, newEngine(t, failingGenerator{}, nil).CacheKey(RunOptions{ResumeText: sampleResume, JobText: sampleJob}))
}

type capturingGateway struct {
	req rendering.Request
}

func (g *capturingGateway) Render(_ context.Context, req rendering.Request) (*rendering.Artifacts, error) {
	g.req = req
	req.Plan.Sections[0].Bullets[0] = "changed by gateway"
	return &rendering.Artifacts{ResumeHTML: "resume.html", Plan: req.Plan}, nil
}

func TestRender_PassesRunContext(t *testing.T) {
	e := newEngine(t, nil, nil)
	rc := newRunContext(t)
	res, err := e.Run(context.Background(), rc, RunOptions{ResumeText: sampleResume, JobText: sampleJob})
	require.NoError(t, err)
	original := res.Plan.Sections[0].Bullets[0]

	gw := &capturingGateway{}
	var events []ProgressEvent
	artifacts, err := e.Render(context.Background(), rc, res, gw, func(ev ProgressEvent) { events = append(events, ev) })
	require.NoError(t, err)

	assert.Equal(t, "resume.html", artifacts.ResumeHTML)
	assert.Equal(t, "Acme", gw.req.Label)
	assert.Equal(t, rc.OutputDir, gw.req.OutputDir)
	assert.Equal(t, rc.MaxPages, gw.req.MaxPages)
	assert.Equal(t, "Jane Doe", gw.req.Resume.Name)
	assert.Equal(t, "Senior Go Engineer", gw.req.RoleTitle)
	require.NotNil(t, gw.req.Overlap)
	assert.Equal(t, 1, gw.req.Overlap("Built REST APIs in Go"))

	assert.Equal(t, original, res.Plan.Sections[0].Bullets[0], "result plan is not shared with the gateway")
	require.Len(t, events, 1)
	assert.Equal(t, StepRender, events[0].Step)
}

func TestRender_WritesFiles(t *testing.T) {
	e := newEngine(t, nil, nil)
	rc := newRunContext(t)
	res, err := e.Run(context.Background(), rc, RunOptions{ResumeText: sampleResume, JobText: sampleJob})
	require.NoError(t, err)

	artifacts, err := e.Render(context.Background(), rc, res, rendering.NewHTMLGateway("", nil, nil), nil)
	require.NoError(t, err)
	for _, p := range artifacts.Paths() {
		assert.FileExists(t, p)
		assert.True(t, strings.HasPrefix(filepath.Base(p), "Resume_Acme_") || strings.HasPrefix(filepath.Base(p), "CoverLetter_Acme_"), p)
	}
}

func TestCache_OneComputationPerKey(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	want := &Result{RunID: uuid.New()}

	fn := func(context.Context) (*Result, error) {
		calls.Add(1)
		<-release
		return want, nil
	}

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, _, err := c.Do(context.Background(), "key", fn)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, want, r)
	}

	res, shared, err := c.Do(context.Background(), "key", fn)
	require.NoError(t, err)
	assert.True(t, shared)
	assert.Same(t, want, res)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	calls := 0
	fn := func(context.Context) (*Result, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return &Result{}, nil
	}

	_, _, err := c.Do(context.Background(), "key", fn)
	require.Error(t, err)
	_, _, err = c.Do(context.Background(), "key", fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	calls := 0
	fn := func(context.Context) (*Result, error) {
		calls++
		return &Result{}, nil
	}

	_, _, _ = c.Do(context.Background(), "key", fn)
	now = now.Add(30 * time.Second)
	_, shared, _ := c.Do(context.Background(), "key", fn)
	assert.True(t, shared)
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 0, c.Len())
	_, shared, _ = c.Do(context.Background(), "key", fn)
	assert.False(t, shared)
	assert.Equal(t, 2, calls)
}

func TestCache_EvictsOldest(t *testing.T) {
	c := NewCache(time.Minute, 2, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		_, _, err := c.Do(context.Background(), key, func(context.Context) (*Result, error) { return &Result{}, nil })
		require.NoError(t, err)
		now = now.Add(time.Second)
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.get("a")
	assert.False(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestCache_CanceledWaiterDoesNotCancelComputation(t *testing.T) {
	c := NewCache(time.Minute, 10, nil)
	release := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, _, err := c.Do(ctx, "key", func(fctx context.Context) (*Result, error) {
			<-release
			return &Result{}, fctx.Err()
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCache_RecordsOutcomes(t *testing.T) {
	metrics := observability.NewMetrics()
	c := NewCache(time.Minute, 10, metrics)
	fn := func(context.Context) (*Result, error) { return &Result{}, nil }

	_, _, _ = c.Do(context.Background(), "key", fn)
	_, _, _ = c.Do(context.Background(), "key", fn)

	count, err := testutil.GatherAndCount(metrics.Registry(), "job_assistant_pipeline_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one miss series and one hit series")
}

func TestRunCached(t *testing.T) {
	e := newEngine(t, nil, nil)
	cache := NewCache(time.Minute, 10, nil)
	opts := RunOptions{ResumeText: sampleResume, JobText: sampleJob}

	first, shared, err := e.RunCached(context.Background(), cache, newRunContext(t), opts)
	require.NoError(t, err)
	assert.False(t, shared)

	second, shared, err := e.RunCached(context.Background(), cache, newRunContext(t), opts)
	require.NoError(t, err)
	assert.True(t, shared)
	assert.Equal(t, first.RunID, second.RunID)

	uncached, shared, err := e.RunCached(context.Background(), nil, newRunContext(t), opts)
	require.NoError(t, err)
	assert.False(t, shared)
	assert.NotEqual(t, first.RunID, uncached.RunID)
}
