// Package types provides type definitions for structured data used throughout the job application assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Recommendation is the apply decision derived from a fit score.
type Recommendation string

// Recommendations
const (
	RecommendApply Recommendation = "APPLY"
	RecommendMaybe Recommendation = "MAYBE"
	RecommendNo    Recommendation = "NO"
)

// FitAssessment is the result of comparing a resume against a job's requirements.
// It is produced once per run and never mutated; WithNote returns a modified copy.
type FitAssessment struct {
	Score          float64        `json:"score"`
	Recommendation Recommendation `json:"recommendation"`
	Matched        []string       `json:"matched"`
	Missing        []string       `json:"missing"`
	Notes          []string       `json:"notes"`
}

// WithNote returns a copy of the assessment with note appended.
func (a FitAssessment) WithNote(note string) FitAssessment {
	out := a.clone()
	out.Notes = append(out.Notes, note)
	return out
}

func (a FitAssessment) clone() FitAssessment {
	return FitAssessment{
		Score:          a.Score,
		Recommendation: a.Recommendation,
		Matched:        append([]string{}, a.Matched...),
		Missing:        append([]string{}, a.Missing...),
		Notes:          append([]string{}, a.Notes...),
	}
}
