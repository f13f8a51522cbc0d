// Package types provides type definitions for structured data used throughout the job application assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Strategy names the tailoring strategy that produced a plan.
type Strategy string

// Tailoring strategies
const (
	StrategyHeuristic Strategy = "heuristic"
	StrategyAI        Strategy = "ai"
)

// TailoringPlan holds the reshaped resume sections and cover letter handed to the renderer.
type TailoringPlan struct {
	Sections    []PlanSection `json:"sections"`
	CoverLetter []string      `json:"cover_letter"`
	Tagline     string        `json:"tagline,omitempty"`
	Strategy    Strategy      `json:"strategy"`
	Notes       []string      `json:"notes,omitempty"`
}

// PlanSection is a re-ordered subset of one source section's bullets.
type PlanSection struct {
	Name    string   `json:"name"`
	Bullets []string `json:"bullets"`
}

// Clone returns a deep copy of the plan.
func (p TailoringPlan) Clone() TailoringPlan {
	out := TailoringPlan{
		Sections:    make([]PlanSection, len(p.Sections)),
		CoverLetter: append([]string(nil), p.CoverLetter...),
		Tagline:     p.Tagline,
		Strategy:    p.Strategy,
		Notes:       append([]string(nil), p.Notes...),
	}
	for i, s := range p.Sections {
		out.Sections[i] = PlanSection{Name: s.Name, Bullets: append([]string(nil), s.Bullets...)}
	}
	return out
}

// BulletCount returns the total number of bullets across sections.
func (p TailoringPlan) BulletCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Bullets)
	}
	return n
}
