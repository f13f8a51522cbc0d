package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/rendering"
	"github.com/jonathan/job-application-assistant/internal/types"
)

const testResume = `Jane Doe
jane@example.com

Experience
----------
- Built REST APIs in Go
- Led a team of 4
`

const testJob = `Senior Go Engineer

Requirements:
- Must have strong Go experience
- Kubernetes is required

Nice to have:
- Leadership of small teams`

// clearEnv hides configuration from the developer's environment and .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvMaxPages, config.EnvResume, config.EnvTemplate, config.EnvOutputDir, config.EnvVocabulary,
		config.EnvAIProvider, config.EnvAITimeout, config.EnvOpenAIKey, config.EnvOpenAIModel,
		config.EnvGeminiKey, config.EnvGeminiModel, config.EnvApplyCutoff, config.EnvMaybeCutoff,
		config.EnvLogLevel, config.EnvLogFormat, config.EnvPort, config.EnvAPIToken,
	} {
		t.Setenv(name, "")
	}
	t.Setenv(config.EnvLogLevel, "error")
}

// resetFlags restores every flag to its default so package-level flag variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeInputs(t *testing.T) (dir, jobPath, resumePath string) {
	t.Helper()
	dir = t.TempDir()
	jobPath = filepath.Join(dir, "job.txt")
	resumePath = filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(jobPath, []byte(testJob), 0o644))
	require.NoError(t, os.WriteFile(resumePath, []byte(testResume), 0o644))
	return dir, jobPath, resumePath
}

func TestAssessCommand_Text(t *testing.T) {
	clearEnv(t)
	_, jobPath, resumePath := writeInputs(t)

	out, err := execute(t, "assess", "--job", jobPath, "--resume", resumePath)
	require.NoError(t, err)

	assert.Contains(t, out, "JOB REQUIREMENTS")
	assert.Contains(t, out, "Senior Go Engineer")
	assert.Contains(t, out, "FIT ASSESSMENT")
	assert.Contains(t, out, "Recommendation: MAYBE")
	assert.Contains(t, out, "kubernetes")
}

func TestAssessCommand_JSON(t *testing.T) {
	clearEnv(t)
	_, jobPath, resumePath := writeInputs(t)

	out, err := execute(t, "assess", "-j", jobPath, "-r", resumePath, "--json")
	require.NoError(t, err)

	var got assessOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, "Senior Go Engineer", got.RoleTitle)
	assert.Equal(t, types.RecommendMaybe, got.Assessment.Recommendation)
	assert.Equal(t, []string{"go", "leadership"}, got.Assessment.Matched)
	assert.Equal(t, []string{"kubernetes"}, got.Assessment.Missing)
	assert.InDelta(t, 0.6, got.Assessment.Score, 1e-9)
	assert.Equal(t, 3, got.Requirements.Len())
}

func TestAssessCommand_ResumeFromEnv(t *testing.T) {
	clearEnv(t)
	_, jobPath, resumePath := writeInputs(t)
	t.Setenv(config.EnvResume, resumePath)

	out, err := execute(t, "assess", "--job", jobPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Recommendation: MAYBE")
}

func TestAssessCommand_ThresholdsFromConfig(t *testing.T) {
	clearEnv(t)
	dir, jobPath, resumePath := writeInputs(t)
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"scoring": {"apply_threshold": 0.55, "maybe_threshold": 0.3}}`), 0o644))

	out, err := execute(t, "--config", cfgPath, "assess", "--job", jobPath, "--resume", resumePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Recommendation: APPLY")
}

func TestCommands_InputErrors(t *testing.T) {
	clearEnv(t)
	dir, jobPath, resumePath := writeInputs(t)
	badCfg := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badCfg, []byte(`{"scoring": {"apply_threshold": 0.3, "maybe_threshold": 0.4}}`), 0o644))

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Neither --job nor --job-url provided",
			args:        []string{"assess", "--resume", resumePath},
			errorString: "either --job or --job-url must be provided",
		},
		{
			name:        "Both --job and --job-url provided",
			args:        []string{"tailor", "--job", jobPath, "--job-url", "https://example.com/job", "--resume", resumePath},
			errorString: "mutually exclusive",
		},
		{
			name:        "No resume",
			args:        []string{"assess", "--job", jobPath},
			errorString: "--resume must be provided",
		},
		{
			name:        "Missing job file",
			args:        []string{"assess", "--job", filepath.Join(dir, "absent.txt"), "--resume", resumePath},
			errorString: "file not found",
		},
		{
			name:        "Non-monotonic thresholds",
			args:        []string{"--config", badCfg, "assess", "--job", jobPath, "--resume", resumePath},
			errorString: "apply_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestTailorCommand_WritesFiles(t *testing.T) {
	clearEnv(t)
	dir, jobPath, resumePath := writeInputs(t)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "tailor", "--job", jobPath, "--resume", resumePath, "--label", "Acme Go", "--out", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "TAILORING PLAN")
	assert.Contains(t, out, "Strategy: heuristic")
	assert.Contains(t, out, "OUTPUT FILES")

	html, err := filepath.Glob(filepath.Join(outDir, "*_Acme-Go_*.html"))
	require.NoError(t, err)
	assert.Len(t, html, 2)
	txt, err := filepath.Glob(filepath.Join(outDir, "*.txt"))
	require.NoError(t, err)
	require.Len(t, txt, 1)

	letter, err := os.ReadFile(txt[0])
	require.NoError(t, err)
	assert.Contains(t, string(letter), "Senior Go Engineer")

	for _, p := range html {
		if strings.HasPrefix(filepath.Base(p), "Resume_") {
			page, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Contains(t, string(page), "Built REST APIs in Go")
		}
	}
}

func TestTailorCommand_HelpNamesOutputFiles(t *testing.T) {
	resume, cover := rendering.BaseNames("<label>", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "Resume_label_20260102_030405", resume)
	assert.Equal(t, "CoverLetter_label_20260102_030405", cover)

	assert.Contains(t, tailorCmd.Long, "Resume_<label>_<timestamp>.html")
	assert.Contains(t, tailorCmd.Long, "CoverLetter_<label>_<timestamp>")
	assert.NotContains(t, tailorCmd.Long, "<label>_Resume_")
}

func TestTailorCommand_InvalidMaxPages(t *testing.T) {
	clearEnv(t)
	dir, jobPath, resumePath := writeInputs(t)

	_, err := execute(t, "tailor", "--job", jobPath, "--resume", resumePath, "--out", dir, "--max-pages", "0")
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
