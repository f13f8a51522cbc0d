package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-application-assistant/internal/types"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("json", "debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("console", "loud")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc ", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestPrintAssessment(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAssessment(&types.FitAssessment{
		Score:          0.6,
		Recommendation: types.RecommendMaybe,
		Matched:        []string{"go", "leadership"},
		Missing:        []string{"kubernetes"},
		Notes:          []string{"Missing 1 required skill(s)"},
	})
	output := buf.String()

	assert.Contains(t, output, "FIT ASSESSMENT")
	assert.Contains(t, output, "0.60")
	assert.Contains(t, output, "MAYBE")
	assert.Contains(t, output, "kubernetes")
	assert.Contains(t, output, "Missing 1 required skill(s)")
}

func TestPrintAssessment_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintAssessment(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRequirements(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRequirements("Senior Go Engineer", types.RequirementSet{Items: []types.Requirement{
		{Keyword: "go", Tag: types.TagRequired, Weight: 2.25},
		{Keyword: "leadership", Tag: types.TagPreferred, Weight: 1.5},
	}})
	output := buf.String()

	assert.Contains(t, output, "JOB REQUIREMENTS")
	assert.Contains(t, output, "Senior Go Engineer")
	assert.Contains(t, output, "go (2.25)")
	assert.Contains(t, output, "leadership")
}

func TestPrintPlan_TruncatesLongBullets(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPlan(&types.TailoringPlan{
		Strategy: types.StrategyHeuristic,
		Sections: []types.PlanSection{{Name: "Experience", Bullets: []string{strings.Repeat("a", 80)}}},
		Notes:    []string{"Trimmed 1 bullet(s) to fit 1 page(s)"},
	})
	output := buf.String()

	assert.Contains(t, output, "TAILORING PLAN")
	assert.Contains(t, output, "Experience (1)")
	assert.Contains(t, output, strings.Repeat("a", 47)+"...")
	assert.NotContains(t, output, strings.Repeat("a", 48))
	assert.Contains(t, output, "Trimmed 1 bullet(s)")
}

func TestPrintArtifacts_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintArtifacts(nil)
	assert.Contains(t, buf.String(), "No files written")
}

func TestMetrics_RecordRun(t *testing.T) {
	m := NewMetrics()
	m.RecordRun("heuristic", "MAYBE", 0.6, true, 10*time.Millisecond)
	m.RecordRun("ai", "APPLY", 0.9, false, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacksTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("ai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recommendations.WithLabelValues("MAYBE")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRun("ai", "NO", 0, false, 0)
		m.RecordCache("hit")
	})
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := NewMetrics()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /outputs/{file}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outputs/a.html", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/outputs/b.html", nil))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "GET /outputs/{file}", "418")))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "other", "404")))

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "job_assistant_http_requests_total")
}

func TestMetrics_MiddlewarePassesFlush(t *testing.T) {
	m := NewMetrics()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stream", func(w http.ResponseWriter, _ *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		_, _ = w.Write([]byte("data: hello\n\n"))
		f.Flush()
	})

	rec := httptest.NewRecorder()
	m.Middleware(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.True(t, rec.Flushed)
	assert.Equal(t, "data: hello\n\n", rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "GET /stream", "200")))
}
