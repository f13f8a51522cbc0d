// Package tailoring turns a resume and its fit assessment into a TailoringPlan: re-ordered
// bullets, a cover letter and, in AI mode, a tagline.
//
// Two strategies implement Tailor. HeuristicStrategy is deterministic and never invents text.
// AIStrategy delegates rewriting to an llm.Generator and falls back to the heuristic
// strategy on any failure.
package tailoring

import (
	"context"

	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/types"
)

// Input is everything a strategy needs for one run.
type Input struct {
	Resume     types.ResumeDocument
	Assessment types.FitAssessment
	Job        types.SignalSet
	RoleTitle  string
	// JobText is the cleaned job description, used only by AI prompts.
	JobText string
}

// Tailor produces a TailoringPlan. Implementations only reference section names present in
// the source resume.
type Tailor interface {
	Tailor(ctx context.Context, in Input) (types.TailoringPlan, error)
}

// Options control plan size and cover letter content.
type Options struct {
	CoverLetterKeywords int
	MaxPages            int
	Layout              Layout
}

// OptionsFromConfig reads tailoring options from the engine configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		CoverLetterKeywords: cfg.Tailoring.CoverLetterKeywords,
		MaxPages:            cfg.MaxPages,
		Layout: Layout{
			CharsPerLine: cfg.Tailoring.CharsPerLine,
			LinesPerPage: cfg.Tailoring.LinesPerPage,
		},
	}
}

// DefaultOptions returns the options for the default configuration.
func DefaultOptions() Options {
	cfg := config.Default()
	return OptionsFromConfig(&cfg)
}
